//go:build go1.18

package domain

import (
	"testing"
)

// FuzzParseJobRoleID checks that parsing never panics and that accepted values
// round-trip through String.
func FuzzParseJobRoleID(f *testing.F) {
	f.Add("")
	f.Add("1")
	f.Add("9223372036854775807")
	f.Add("9223372036854775808")
	f.Add("-1")
	f.Add("'; DROP TABLE users;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseJobRoleID(input)
		if err != nil {
			return
		}
		if !id.IsValid() {
			t.Errorf("accepted non-positive id %d", id)
		}
		roundTrip, err := ParseJobRoleID(id.String())
		if err != nil {
			t.Errorf("valid ID failed round-trip: %v", err)
		}
		if roundTrip != id {
			t.Error("round-trip changed ID value")
		}
	})
}
