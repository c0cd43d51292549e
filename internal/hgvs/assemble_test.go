package hgvs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTranscriptAllele(t *testing.T) {
	tests := []struct {
		name string
		bc   BuildingComponents
		want string
	}{
		{
			name: "coding substitution",
			bc: BuildingComponents{
				TranscriptID: "ENST00000311936", GeneID: "ENSG00000133703",
				Kind: KindCoding, MutationType: Substitution,
				CdnaStart: CdnaCoord{35, 0, CdnaStartCodon},
				CdnaEnd:   CdnaCoord{35, 0, CdnaStartCodon},
				Ref:       "G", Alt: "T",
			},
			want: "ENST00000311936(ENSG00000133703):c.35G>T",
		},
		{
			name: "non-coding deletion range",
			bc: BuildingComponents{
				TranscriptID: "ENST03", GeneID: "ENSG03",
				Kind: KindNonCoding, MutationType: Deletion,
				CdnaStart: CdnaCoord{10, 0, TranscriptStart},
				CdnaEnd:   CdnaCoord{12, 0, TranscriptStart},
				Ref:       "ACG",
			},
			want: "ENST03(ENSG03):n.10_12del",
		},
		{
			name: "intronic insertion",
			bc: BuildingComponents{
				TranscriptID: "ENST01", GeneID: "ENSG01",
				Kind: KindCoding, MutationType: Insertion,
				CdnaStart: CdnaCoord{88, 1, CdnaStartCodon},
				CdnaEnd:   CdnaCoord{88, 2, CdnaStartCodon},
				Alt:       "TTG",
			},
			want: "ENST01(ENSG01):c.88+1_88+2insTTG",
		},
		{
			name: "3' UTR duplication",
			bc: BuildingComponents{
				TranscriptID: "ENST01", GeneID: "ENSG01",
				Kind: KindCoding, MutationType: Duplication,
				CdnaStart: CdnaCoord{6, 0, CdnaStopCodon},
				CdnaEnd:   CdnaCoord{6, 0, CdnaStopCodon},
				Ref:       "A",
			},
			want: "ENST01(ENSG01):c.*6dup",
		},
		{
			name: "5' UTR delins",
			bc: BuildingComponents{
				TranscriptID: "ENST01", GeneID: "ENSG01",
				Kind: KindCoding, MutationType: Delins,
				CdnaStart: CdnaCoord{-14, 0, CdnaStartCodon},
				CdnaEnd:   CdnaCoord{-13, 0, CdnaStartCodon},
				Ref:       "AC", Alt: "GT",
			},
			want: "ENST01(ENSG01):c.-14_-13delinsGT",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatTranscriptAllele(&tt.bc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatTranscriptAllele_UnknownKind(t *testing.T) {
	bc := &BuildingComponents{
		TranscriptID: "ENST01", GeneID: "ENSG01",
		Kind: KindUnknown, MutationType: Substitution,
		Ref: "G", Alt: "T", Chrom: "12", Start: 25245350,
	}
	_, err := FormatTranscriptAllele(bc)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedNotationKind)

	var kindErr *NotationKindError
	require.True(t, errors.As(err, &kindErr))
	assert.Equal(t, "12", kindErr.Chrom)
	assert.Equal(t, int64(25245350), kindErr.Start)
	assert.Equal(t, KindUnknown, kindErr.Kind)
	assert.Contains(t, err.Error(), "12:25245350:G:T")
	assert.Contains(t, err.Error(), "UNKNOWN")
}

func TestFormatCdnaCoords(t *testing.T) {
	bc := &BuildingComponents{
		CdnaStart: CdnaCoord{51, 0, CdnaStartCodon},
		CdnaEnd:   CdnaCoord{51, 1, CdnaStartCodon},
	}
	assert.Equal(t, "51_51+1", FormatCdnaCoords(bc))

	bc.CdnaEnd = bc.CdnaStart
	assert.Equal(t, "51", FormatCdnaCoords(bc))

	bc.CdnaEnd = CdnaCoord{51, 0, CdnaStopCodon}
	assert.Equal(t, "51_*51", FormatCdnaCoords(bc), "same number on different landmarks")
}

func TestFormatDnaAllele(t *testing.T) {
	bc := &BuildingComponents{Ref: "AC", Alt: "G"}
	for mt, want := range map[MutationType]string{
		Substitution:     "AC>G",
		Deletion:         "del",
		Duplication:      "dup",
		Insertion:        "insG",
		Delins:           "delinsG",
		MutationType(99): "",
	} {
		bc.MutationType = mt
		assert.Equal(t, want, FormatDnaAllele(bc), mt.String())
	}
}

func TestSetRangeCoordsAndAlleles(t *testing.T) {
	t.Run("forward keeps orientation", func(t *testing.T) {
		bc := &BuildingComponents{}
		require.True(t, setRangeCoordsAndAlleles(350, 351, "CG", "TTA", createForwardTranscript(), bc))
		assert.Equal(t, "102", bc.CdnaStart.String())
		assert.Equal(t, "103", bc.CdnaEnd.String())
		assert.Equal(t, "CG", bc.Ref)
		assert.Equal(t, "TTA", bc.Alt)
	})

	t.Run("reverse swaps ends and complements", func(t *testing.T) {
		bc := &BuildingComponents{}
		require.True(t, setRangeCoordsAndAlleles(1399, 1400, "", "AAC", createReverseTranscript(), bc))
		assert.Equal(t, "51", bc.CdnaStart.String())
		assert.Equal(t, "51+1", bc.CdnaEnd.String())
		assert.Equal(t, "", bc.Ref)
		assert.Equal(t, "GTT", bc.Alt)
	})

	t.Run("long alleles become lengths", func(t *testing.T) {
		bc := &BuildingComponents{}
		require.True(t, setRangeCoordsAndAlleles(350, 354, "CGTAC", "", createForwardTranscript(), bc))
		assert.Equal(t, "5", bc.Ref)

		require.True(t, setRangeCoordsAndAlleles(1250, 1251, "", "ACGTAC", createReverseTranscript(), bc))
		assert.Equal(t, "6", bc.Alt)
	})

	t.Run("four bases are written out", func(t *testing.T) {
		bc := &BuildingComponents{}
		require.True(t, setRangeCoordsAndAlleles(350, 351, "", "ACGG", createReverseTranscript(), bc))
		assert.Equal(t, "CCGT", bc.Alt)
	})

	t.Run("uncomplementable allele", func(t *testing.T) {
		bc := &BuildingComponents{}
		assert.False(t, setRangeCoordsAndAlleles(1250, 1250, "A", "X", createReverseTranscript(), bc))
	})
}

func TestKindAndMutationTypeString(t *testing.T) {
	assert.Equal(t, "CODING", KindCoding.String())
	assert.Equal(t, "NON_CODING", KindNonCoding.String())
	assert.Equal(t, "UNKNOWN", KindUnknown.String())
	assert.Equal(t, "duplication", Duplication.String())
	assert.Equal(t, "MutationType(99)", MutationType(99).String())
}
