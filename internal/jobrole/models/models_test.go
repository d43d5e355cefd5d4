package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "jobboard/pkg/domain-errors"
)

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func TestJobRole_IsOpen(t *testing.T) {
	for name, want := range map[string]bool{"Open": true, "open": true, " OPEN ": true, "Closed": false, "": false} {
		j := JobRole{Status: Status{Name: name}}
		assert.Equal(t, want, j.IsOpen(), name)
	}
}

func TestCreateJobRoleRequest_Validate(t *testing.T) {
	t.Run("valid request yields typed fields", func(t *testing.T) {
		req := &CreateJobRoleRequest{
			RoleName: " Software Engineer ", Location: "London",
			CapabilityID: 1, BandID: 2, StatusID: 1,
			ClosingDate:           "2027-03-31",
			SharepointURL:         "https://example.sharepoint.com/jobs/1",
			NumberOfOpenPositions: intPtr(3),
		}
		require.NoError(t, req.Validate())
		f := req.Fields()
		assert.Equal(t, "Software Engineer", f.RoleName)
		assert.Equal(t, time.Date(2027, 3, 31, 0, 0, 0, 0, time.UTC), f.ClosingDate)
		assert.Equal(t, 3, f.NumberOfOpenPositions)
	})

	t.Run("reports every violation", func(t *testing.T) {
		req := &CreateJobRoleRequest{ClosingDate: "31/03/2027", SharepointURL: "not a url", NumberOfOpenPositions: intPtr(-1)}
		de, ok := dErrors.As(req.Validate())
		require.True(t, ok)
		assert.Equal(t, "Validation failed", de.Message)
		assert.ElementsMatch(t, []string{
			"roleName is required",
			"location is required",
			"capabilityId must be a positive integer",
			"bandId must be a positive integer",
			"statusId must be a positive integer",
			"closingDate must be a valid ISO 8601 date",
			"sharepointUrl must be a valid URL",
			"numberOfOpenPositions must be a non-negative integer",
		}, de.Violations)
	})

	t.Run("positions are required", func(t *testing.T) {
		req := &CreateJobRoleRequest{RoleName: "r", Location: "l", CapabilityID: 1, BandID: 1, StatusID: 1, ClosingDate: "2027-01-01T10:00:00Z"}
		de, ok := dErrors.As(req.Validate())
		require.True(t, ok)
		assert.Equal(t, []string{"numberOfOpenPositions is required"}, de.Violations)
	})
}

func TestUpdateJobRoleRequest(t *testing.T) {
	current := &JobRole{
		RoleName: "Old", Location: "Leeds",
		Capability: Capability{ID: 1}, Band: Band{ID: 1}, Status: Status{ID: 1},
		ClosingDate: time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), NumberOfOpenPositions: 1,
	}

	t.Run("empty body is rejected", func(t *testing.T) {
		assert.True(t, dErrors.HasCode((&UpdateJobRoleRequest{}).Validate(), dErrors.CodeValidation))
	})

	t.Run("present fields are validated", func(t *testing.T) {
		req := &UpdateJobRoleRequest{RoleName: strPtr("  "), NumberOfOpenPositions: intPtr(-2)}
		de, ok := dErrors.As(req.Validate())
		require.True(t, ok)
		assert.Len(t, de.Violations, 2)
	})

	t.Run("overlays only provided fields", func(t *testing.T) {
		req := &UpdateJobRoleRequest{Location: strPtr("Belfast"), NumberOfOpenPositions: intPtr(0)}
		require.NoError(t, req.Validate())
		f := req.ApplyTo(current)
		assert.Equal(t, "Old", f.RoleName)
		assert.Equal(t, "Belfast", f.Location)
		assert.Equal(t, 0, f.NumberOfOpenPositions)
		assert.Equal(t, current.ClosingDate, f.ClosingDate)
	})
}
