package recipe

import (
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"cooksy/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"sorted and lowercased", " Telur, nasi,, Kecap ,", []string{"kecap", "nasi", "telur"}},
		{"duplicates kept", "telur, Telur", []string{"telur", "telur"}},
		{"multi word", "bawang putih, ayam", []string{"ayam", "bawang putih"}},
		{"empty", "", []string{}},
		{"only separators", " , ,, ", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			assert.Equal(t, tt.want, got)
			assert.True(t, sort.StringsAreSorted(got))
			for _, token := range got {
				assert.NotEmpty(t, token)
			}
		})
	}
}

func TestCleanKeepsOrder(t *testing.T) {
	assert.Equal(t, []string{"telur", "nasi", "kecap"}, Clean("Telur, NASI , kecap"))
}

func testRecords() []Record {
	return []Record{
		{Title: "Ayam Goreng", Ingredients: Clean("ayam, bawang putih, garam")},
		{Title: "Nasi Goreng", Ingredients: Clean("nasi, telur, kecap, bawang merah")},
		{Title: "Sop Ayam", Ingredients: Clean("ayam, wortel, kentang, garam")},
	}
}

func TestSearchExactRecord(t *testing.T) {
	ix := BuildIndex(testRecords())

	matches := ix.Search(Normalize("telur, nasi, kecap, bawang merah"), 1)
	require.Len(t, matches, 1)
	assert.Equal(t, 1, matches[0].Index)
	assert.Equal(t, "Nasi Goreng", matches[0].Record.Title)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-9)
	assert.Greater(t, matches[0].Score, DefaultRelevanceThreshold)
}

func TestSearchNoSharedVocabulary(t *testing.T) {
	ix := BuildIndex(testRecords())

	matches := ix.Search([]string{"pizza", "keju mozarella"}, 1)
	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}

func TestSearchThreshold(t *testing.T) {
	ix := BuildIndex(testRecords(), WithThreshold(0.99))
	assert.Equal(t, 0.99, ix.Threshold())

	assert.Empty(t, ix.Search([]string{"ayam"}, 1))
}

func TestSearchIDFWeighting(t *testing.T) {
	ix := BuildIndex([]Record{
		{Title: "Telur Rebus", Ingredients: []string{"telur"}},
		{Title: "Nasi Telur", Ingredients: []string{"telur", "nasi"}},
	})
	assert.Equal(t, 2, ix.VocabularySize())

	// idf(nasi) = ln(3/2) + 1, idf(telur) = ln(3/3) + 1 = 1
	idfNasi := math.Log(3.0/2.0) + 1
	want := idfNasi / math.Sqrt(idfNasi*idfNasi+1)

	matches := ix.Search([]string{"nasi"}, 1)
	require.Len(t, matches, 1)
	assert.Equal(t, 1, matches[0].Index)
	assert.InDelta(t, want, matches[0].Score, 1e-9)
}

func TestSearchTieBreakAndTopN(t *testing.T) {
	records := []Record{
		{Title: "Pertama", Ingredients: []string{"tahu", "tempe"}},
		{Title: "Lain", Ingredients: []string{"ikan"}},
		{Title: "Kedua", Ingredients: []string{"tahu", "tempe"}},
	}
	ix := BuildIndex(records)

	matches := ix.Search([]string{"tahu", "tempe"}, 2)
	require.Len(t, matches, 2)
	assert.Equal(t, 0, matches[0].Index)
	assert.Equal(t, 2, matches[1].Index)

	// topN <= 0 視為 1
	assert.Len(t, ix.Search([]string{"tahu"}, 0), 1)

	// topN 超過資料量時回傳全部
	assert.Len(t, ix.Search([]string{"tahu"}, 10), 3)
}

func TestSearchIgnoresShortTokens(t *testing.T) {
	ix := BuildIndex([]Record{{Title: "X", Ingredients: []string{"a", "telur"}}})
	assert.Equal(t, 1, ix.VocabularySize())
	assert.Empty(t, ix.Search([]string{"a"}, 1))
}

func TestReadCorpus(t *testing.T) {
	data := "\ufeffTitle,Ingredients,Steps,URL,Category,Title Cleaned\n" +
		`Ayam Goreng Kriuk,"Ayam 1 ekor, Bawang Putih ,, garam",Goreng,/ayam,ayam,ayam goreng kriuk` + "\n" +
		`Tempe Bacem,"tempe, gula merah",,/tempe,tempe,tempe bacem` + "\n"

	records, err := ReadCorpus(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "ayam goreng kriuk", records[0].Title)
	assert.Equal(t, []string{"ayam 1 ekor", "bawang putih", "garam"}, records[0].Ingredients)
	assert.Equal(t, "Goreng", records[0].Steps)
	assert.Equal(t, "/ayam", records[0].URL)
	assert.Equal(t, "ayam", records[0].Category)
	assert.Equal(t, "tempe bacem", records[1].Title)
}

func TestReadCorpusEmptyCell(t *testing.T) {
	data := "Title Cleaned,Ingredients\nkosong,\nsambal,\"cabai, garam\"\n"

	records, err := ReadCorpus(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Empty(t, records[0].Ingredients)
}

func TestReadCorpusErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty file", ""},
		{"header only", "Title Cleaned,Ingredients\n"},
		{"missing ingredients column", "Title Cleaned,Steps\nsoto,rebus\n"},
		{"missing title column", "Title,Ingredients\nsoto,ayam\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCorpus(strings.NewReader(tt.data))
			require.Error(t, err)
			assert.True(t, common.IsKind(err, common.ErrCodeDataUnavailable))
		})
	}
}

func TestLoadCorpus(t *testing.T) {
	_, err := LoadCorpus(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.True(t, common.IsKind(err, common.ErrCodeDataUnavailable))

	path := filepath.Join(t.TempDir(), "resep.csv")
	require.NoError(t, os.WriteFile(path, []byte("Title Cleaned,Ingredients\nsoto ayam,\"ayam, kunyit\"\n"), 0644))

	records, err := LoadCorpus(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"ayam", "kunyit"}, records[0].Ingredients)
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"heading with punctuation", "# Nasi Goreng Spesial!\n## 🍳 Bahan", "resep_nasi_goreng_spesial.txt"},
		{"no heading", "Halo Bestie, ini resepnya", DefaultFilename},
		{"heading after intro", "Siap!\n# Soto Betawi\nisi", "resep_soto_betawi.txt"},
		{"emoji and dashes", "# 🍜 Mie-Ayam  Jamur 🍄", "resep_mie_ayam_jamur.txt"},
		{"subheading only", "## 🍳 Bahan\n- telur", "resep_bahan.txt"},
		{"empty title", "# !!!", DefaultFilename},
		{"crlf", "# Pepes Ikan\r\nisi", "resep_pepes_ikan.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Filename(tt.text))
		})
	}
}

func TestSubstitutions(t *testing.T) {
	subs := Substitutions()
	require.Len(t, subs, 11)
	assert.Equal(t, "bawang putih", subs[0].Ingredient)

	// 回傳副本，修改不影響原表
	subs[0].Substitute = "x"
	assert.Equal(t, "bawang bombay", Substitutions()[0].Substitute)

	s, ok := LookupSubstitution(" Udang ")
	require.True(t, ok)
	assert.Equal(t, "ikan dori fillet", s.Substitute)

	_, ok = LookupSubstitution("durian")
	assert.False(t, ok)
}
