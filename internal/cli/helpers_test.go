package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"herdcore/pkg/domain"
)

func TestParseDate(t *testing.T) {
	got, err := parseDate("2026-03-15")
	require.NoError(t, err)
	require.True(t, got.Equal(time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)))

	zero, err := parseDate("")
	require.NoError(t, err)
	require.True(t, zero.IsZero())

	_, err = parseDate("15/03/2026")
	require.ErrorContains(t, err, "expected YYYY-MM-DD")
}

func TestParseSex(t *testing.T) {
	for _, v := range []string{"F", "f", "female"} {
		sex, err := parseSex(v)
		require.NoError(t, err)
		require.Equal(t, domain.SexFemale, sex)
	}
	for _, v := range []string{"M", "m", "male"} {
		sex, err := parseSex(v)
		require.NoError(t, err)
		require.Equal(t, domain.SexMale, sex)
	}
	sex, err := parseSex("")
	require.NoError(t, err)
	require.Empty(t, sex)

	_, err = parseSex("heifer")
	require.Error(t, err)
}

func TestParseTechnique(t *testing.T) {
	cases := map[string]domain.BreedingTechnique{
		"natural_mating":          domain.TechniqueNaturalMating,
		"artificial_insemination": domain.TechniqueArtificialInsemination,
		"embryo_transfer":         domain.TechniqueEmbryoTransfer,
		"fixed_time_ai":           domain.TechniqueFixedTimeAI,
	}
	for in, want := range cases {
		got, err := parseTechnique(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := parseTechnique("cloning")
	require.Error(t, err)
}

func TestParseBirthType(t *testing.T) {
	cases := map[string]domain.BirthType{
		"normal":   domain.BirthNormal,
		"cesarean": domain.BirthCesarean,
		"abortion": domain.BirthAbortion,
	}
	for in, want := range cases {
		got, err := parseBirthType(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := parseBirthType("twin")
	require.Error(t, err)
}

func TestOptional(t *testing.T) {
	require.Nil(t, optional(""))
	got := optional("m-1")
	require.NotNil(t, got)
	require.Equal(t, "m-1", *got)
}
