package store

import (
	"time"

	"jobboard/internal/jobrole/models"
)

// Reference data shared by both stores. Postgres seeds the same rows in schema.sql.
var (
	seedCapabilities = []models.Capability{
		{ID: 1, Name: "Engineering"},
		{ID: 2, Name: "Data & AI"},
		{ID: 3, Name: "Platforms"},
	}
	seedBands = []models.Band{
		{ID: 1, Name: "Associate"},
		{ID: 2, Name: "Senior Associate"},
		{ID: 3, Name: "Consultant"},
	}
	seedStatuses = []models.Status{
		{ID: 1, Name: "Open"},
		{ID: 2, Name: "Closed"},
	}
)

func seedJobRoles() []models.JobRole {
	closing := func(month time.Month, day int) time.Time {
		return time.Date(2027, month, day, 23, 59, 59, 0, time.UTC)
	}
	return []models.JobRole{
		{
			ID: 1, RoleName: "Software Engineer", Location: "London",
			Capability: seedCapabilities[0], Band: seedBands[0], Status: seedStatuses[0],
			ClosingDate:           closing(time.March, 31),
			Description:           "Build and maintain services for client projects.",
			Responsibilities:      "Write well-tested code; take part in code review; support releases.",
			SharepointURL:         "https://example.sharepoint.com/jobs/software-engineer",
			NumberOfOpenPositions: 3,
		},
		{
			ID: 2, RoleName: "Senior Software Engineer", Location: "Manchester",
			Capability: seedCapabilities[0], Band: seedBands[1], Status: seedStatuses[0],
			ClosingDate:           closing(time.April, 30),
			Description:           "Lead delivery of backend components.",
			Responsibilities:      "Own technical design; mentor engineers; work with stakeholders.",
			SharepointURL:         "https://example.sharepoint.com/jobs/senior-software-engineer",
			NumberOfOpenPositions: 2,
		},
		{
			ID: 3, RoleName: "Data Scientist", Location: "Belfast",
			Capability: seedCapabilities[1], Band: seedBands[2], Status: seedStatuses[0],
			ClosingDate:           closing(time.May, 31),
			Description:           "Turn client data into models and insight.",
			Responsibilities:      "Explore data; build models; present findings.",
			SharepointURL:         "https://example.sharepoint.com/jobs/data-scientist",
			NumberOfOpenPositions: 1,
		},
		{
			ID: 4, RoleName: "Platform Engineer", Location: "Edinburgh",
			Capability: seedCapabilities[2], Band: seedBands[1], Status: seedStatuses[1],
			ClosingDate:           closing(time.June, 30),
			Description:           "Run the cloud platform our teams deploy to.",
			Responsibilities:      "Automate infrastructure; keep environments healthy; on-call rotation.",
			SharepointURL:         "https://example.sharepoint.com/jobs/platform-engineer",
			NumberOfOpenPositions: 0,
		},
	}
}

