// Package extract fuses scraped page fragments into a single song guess.
package extract

import (
	"sort"

	"github.com/ppiankov/trackmatch/internal/model"
)

// MaxConfidence caps the fused confidence
const MaxConfidence = 100

// Extractor classifies page fragments and folds them into a SongGuess
type Extractor struct {
	weights       model.Weights
	minConfidence int
}

// NewExtractor creates an extractor with the configured weights
func NewExtractor(cfg model.ExtractionConfig) *Extractor {
	return &Extractor{
		weights:       cfg.Weights,
		minConfidence: cfg.MinConfidence,
	}
}

// ExtractPage classifies and fuses the fragments of one page
func (e *Extractor) ExtractPage(page model.Page) ([]model.RawSignal, *model.SongGuess) {
	signals := e.Classify(page)
	return signals, e.Extract(signals)
}

// Extract fuses signals into a guess. Signals are applied in kind precedence
// order regardless of the order given. Returns nil when the result is too
// weak to search for.
func (e *Extractor) Extract(signals []model.RawSignal) *model.SongGuess {
	guess := cleanup(e.Fold(signals))

	if guess.Confidence > MaxConfidence {
		guess.Confidence = MaxConfidence
	}
	if !guess.Valid(e.minConfidence) {
		return nil
	}
	return &guess
}

// Fold applies every signal to an empty guess without cleanup or validation
func (e *Extractor) Fold(signals []model.RawSignal) model.SongGuess {
	ordered := make([]model.RawSignal, len(signals))
	copy(ordered, signals)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Kind < ordered[j].Kind
	})

	var guess model.SongGuess
	for _, sig := range ordered {
		guess = e.apply(guess, sig)
	}
	return guess
}

// apply folds one signal into the guess according to its kind's overwrite rule
func (e *Extractor) apply(g model.SongGuess, sig model.RawSignal) model.SongGuess {
	changed := false

	switch sig.Kind {
	case model.KindMetadataSong:
		if g.Song == "" || g.Confidence < e.weights.MetadataReplaceBelow {
			g.Song = sig.Value
			g.Confidence += sig.Weight
			changed = true
		}

	case model.KindMetadataArtist:
		g.AddPossibleArtist(sig.Value)
		if g.Artist == "" || g.Confidence < e.weights.MetadataReplaceBelow {
			g.Artist = sig.Value
			g.Confidence += sig.Weight
			changed = true
		}

	case model.KindTitleSeparated:
		artist, song, ok := SplitTitle(sig.Value)
		if !ok {
			break
		}
		g.AddPossibleArtist(artist)
		if g.Artist == "" && artist != "" {
			g.Artist = artist
			g.Confidence += sig.Weight
			changed = true
		}
		if g.Song == "" && song != "" {
			g.Song = song
			g.Confidence += sig.Weight
			changed = true
		}

	case model.KindTitleFull:
		if g.Song == "" {
			g.Song = sig.Value
			g.Confidence += sig.Weight
			changed = true
		}

	case model.KindDescriptionArtist:
		g.AddPossibleArtist(sig.Value)
		if g.Artist == "" || g.Confidence < e.weights.DescriptionReplaceBelow {
			g.Artist = sig.Value
			g.Confidence += sig.Weight
			changed = true
		}

	case model.KindDescriptionSong:
		if g.Song == "" || g.Confidence < e.weights.DescriptionReplaceBelow {
			g.Song = sig.Value
			g.Confidence += sig.Weight
			changed = true
		}

	case model.KindChannelVevo, model.KindChannelOfficial:
		if (g.Artist == "" || g.Confidence < e.weights.ChannelReplaceBelow) && !g.HasPossibleArtist(sig.Value) {
			g.AddPossibleArtist(sig.Value)
			g.Artist = sig.Value
			g.Confidence += sig.Weight
			changed = true
		}
	}

	if changed {
		g.Sources = append(g.Sources, sig.Kind)
	}
	return g
}
