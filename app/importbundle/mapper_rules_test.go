package importbundle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferMapping(t *testing.T) {
	tests := []struct {
		name       string
		columns    []string
		want       map[Field]string
		confidence Confidence
		unmapped   []string
	}{
		{
			name:    "separate first and last name",
			columns: []string{"Last Name", "First Name", "Email", "Goal Weight", "Notes", "Current Weight"},
			want: map[Field]string{
				FieldName: "First Name", FieldEmail: "Email", FieldGoalWeight: "Goal Weight",
				FieldNotes: "Notes", FieldWeight: "Current Weight",
			},
			confidence: ConfidenceHigh,
			unmapped:   []string{"Last Name"},
		},
		{
			name:       "full name beats first name",
			columns:    []string{"First Name", "Full Name", "Name"},
			want:       map[Field]string{FieldName: "Full Name"},
			confidence: ConfidenceHigh,
			unmapped:   []string{"First Name", "Name"},
		},
		{
			name:       "generic name beats last name",
			columns:    []string{"Surname", "Client", "Target", "lbs"},
			want:       map[Field]string{FieldName: "Client", FieldGoalWeight: "Target", FieldWeight: "lbs"},
			confidence: ConfidenceHigh,
			unmapped:   []string{"Surname"},
		},
		{
			name:       "last name only is a low confidence fallback",
			columns:    []string{"Surname", "Weight"},
			want:       map[Field]string{FieldName: "Surname", FieldWeight: "Weight"},
			confidence: ConfidenceLow,
			unmapped:   []string{},
		},
		{
			name:       "substring matches are medium",
			columns:    []string{"Client Name (primary)", "Contact Email", "Weight Goal (lbs)", "Coach comments"},
			want:       map[Field]string{FieldName: "Client Name (primary)", FieldEmail: "Contact Email", FieldGoalWeight: "Weight Goal (lbs)", FieldNotes: "Coach comments"},
			confidence: ConfidenceMedium,
			unmapped:   []string{},
		},
		{
			name:       "accents and punctuation are ignored",
			columns:    []string{"NAME", "É-mail", "Nötes"},
			want:       map[Field]string{FieldName: "NAME", FieldEmail: "É-mail", FieldNotes: "Nötes"},
			confidence: ConfidenceHigh,
			unmapped:   []string{},
		},
		{
			name:       "nothing recognisable",
			columns:    []string{"foo", "bar"},
			want:       map[Field]string{},
			confidence: ConfidenceLow,
			unmapped:   []string{"foo", "bar"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapping := InferMapping(tt.columns)
			for _, def := range FieldCatalog {
				assert.Equal(t, tt.want[def.Field], mapping.Column(def.Field), def.Field)
			}
			assert.Equal(t, tt.confidence, mapping.Confidence)
			assert.Equal(t, tt.unmapped, mapping.UnmappedColumns)
		})
	}
}

func TestRuleMapperIsDeterministic(t *testing.T) {
	table := sampleTable()
	mapper := NewRuleMapper()

	first, err := mapper.MapColumns(context.Background(), table)
	require.NoError(t, err)
	second, err := mapper.MapColumns(context.Background(), table)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, "Full Name", first.Column(FieldName))
	assert.Equal(t, "E-mail", first.Column(FieldEmail))
	assert.Equal(t, "Wt", first.Column(FieldWeight))
	assert.Equal(t, []string{"Phone"}, first.UnmappedColumns)
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "emailaddress", normalizeHeader(" E-mail Address "))
	assert.Equal(t, "prenom", normalizeHeader("Prénom"))
	assert.Equal(t, "goalwtlbs", normalizeHeader("Goal Wt (lbs)"))
}
