package domain

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogue_Merge(t *testing.T) {
	c := make(Catalogue)
	input := strings.Join([]string{
		"Catalogue_id,de,fr,it,en",
		"maincat_1,Wasserkraft,Hydraulique,Idroelettrico,Hydroelectric power",
		"subcat_2,Photovoltaik,Photovoltaïque,Fotovoltaico,Photovoltaic",
	}, "\n")

	require.NoError(t, c.Merge(strings.NewReader(input)))

	want := Catalogue{
		"maincat_1": "Hydroelectric power",
		"subcat_2":  "Photovoltaic",
	}
	assert.Empty(t, cmp.Diff(want, c))
}

func TestCatalogue_Merge_UsesLastColumn(t *testing.T) {
	c := make(Catalogue)
	require.NoError(t, c.Merge(strings.NewReader("plantcat_8,Speicher,Accumulation, Storage \n")))

	assert.Equal(t, "Storage", c["plantcat_8"])
}

func TestCatalogue_Merge_LastWriterWins(t *testing.T) {
	c := make(Catalogue)
	require.NoError(t, c.Merge(strings.NewReader("code_1,first\n")))
	require.NoError(t, c.Merge(strings.NewReader("code_1,second\n")))

	// Later catalogues silently overwrite earlier codes.
	assert.Equal(t, "second", c["code_1"])
}

func TestCatalogue_Merge_SkipsHeaderAndShortRows(t *testing.T) {
	c := make(Catalogue)
	input := "Catalogue_id,en\nlonely\nsubcat_3,Wind\n"

	require.NoError(t, c.Merge(strings.NewReader(input)))

	assert.Len(t, c, 1)
	assert.Equal(t, "Wind", c["subcat_3"])
}
