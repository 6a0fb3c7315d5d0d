package wbs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jengzang/wbs-backend-go/internal/models"
)

func TestValidate(t *testing.T) {
	withDep := task("2.1", 10, 0)
	withDep.Dependencies = []models.Dependency{
		{PredecessorID: "1.0", Type: models.DependencyFS},
		{PredecessorID: "8.8", Type: models.DependencyFF},
	}

	v := Validate([]models.WBSTask{
		task("1.0", 60, 0),
		task("2.0", 40, 0),
		withDep,
		task("3.2", 5, 0),
	})

	assert.Equal(t, 100, v.TopLevelWeight)
	assert.True(t, v.WeightValid)
	assert.Equal(t, []string{"3.2"}, v.Orphans)
	assert.Equal(t, []string{"2.1->8.8"}, v.DanglingDependencies)
}

func TestValidate_Empty(t *testing.T) {
	v := Validate(nil)

	assert.Equal(t, 0, v.TopLevelWeight)
	assert.False(t, v.WeightValid)
	assert.NotNil(t, v.Orphans)
	assert.NotNil(t, v.DanglingDependencies)
}

func TestDurationDays(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		days       int
		ok         bool
	}{
		{"two weeks", "2023-11-01", "2023-11-15", 14, true},
		{"same day", "2023-11-01", "2023-11-01", 0, true},
		{"reversed", "2023-11-15", "2023-11-01", 14, true},
		{"missing start", "", "2023-11-01", 0, false},
		{"bad end", "2023-11-01", "soon", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, ok := DurationDays(tt.start, tt.end)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.days, days)
		})
	}
}
