// Package handlers holds the view models rendered by the web templates.
package handlers

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rparrett/synthlang-web/internal/lang"
	"github.com/rparrett/synthlang-web/internal/nav"
)

// Layout carries fields every full page needs.
type Layout struct {
	Title     string
	Path      string
	Nav       []nav.RenderedItem
	CSRFToken string
	Version   string
	// TabID identifies the browser tab's navigation state on htmx requests.
	TabID string
}

// ProfileData is the view model for a language page.
type ProfileData struct {
	Layout

	Name          string
	Seed          string
	PermalinkPath string
	SampleColumns [][]lang.WordSample
	Consonants    []string
	Vowels        []string
	Places        []PlaceView
	Weights       []WeightView
	MoreWords     []string
}

// PlaceView is one row of the famous places table.
type PlaceView struct {
	Name      string
	Meaning   string
	Etymology string
}

// WeightView is one row of the parameters table.
type WeightView struct {
	Name  string
	Value int
}

// BuildProfileData turns a profile into its page view model. path is the URL
// the browser will show for this render.
func BuildProfileData(p *lang.Profile, path, version, csrf string) ProfileData {
	// one Caser per call; it is reused only within this goroutine
	title := cases.Title(language.English)
	places := make([]PlaceView, 0, len(p.Places))
	for _, pl := range p.Places {
		places = append(places, PlaceView{
			Name:      title.String(pl.Compound),
			Meaning:   fmt.Sprintf("%q", title.String(pl.AdjectiveGloss)+" "+title.String(pl.NounGloss)),
			Etymology: fmt.Sprintf("from %s (%q) and %s (%q)", pl.Adjective, pl.AdjectiveGloss, pl.Noun, pl.NounGloss),
		})
	}

	return ProfileData{
		Layout: Layout{
			Title:     p.Name,
			Path:      path,
			Nav:       nav.Build(path),
			CSRFToken: csrf,
			Version:   version,
		},
		Name:          p.Name,
		Seed:          p.Seed.String(),
		PermalinkPath: p.PermalinkPath(version),
		SampleColumns: splitColumns(p.Samples, 2),
		Consonants:    p.Consonants,
		Vowels:        p.Vowels,
		Places:        places,
		Weights: []WeightView{
			{Name: "VC Weight", Value: p.Weights.VC},
			{Name: "CV Weight", Value: p.Weights.CV},
			{Name: "CVC Weight", Value: p.Weights.CVC},
		},
		MoreWords: p.MoreWords,
	}
}

// splitColumns splits samples into n columns of equal height, filling the
// first column before the next.
func splitColumns(samples []lang.WordSample, n int) [][]lang.WordSample {
	if len(samples) == 0 || n <= 0 {
		return nil
	}
	height := (len(samples) + n - 1) / n
	cols := make([][]lang.WordSample, 0, n)
	for start := 0; start < len(samples); start += height {
		end := min(start+height, len(samples))
		cols = append(cols, samples[start:end])
	}
	return cols
}

// MoreWordsData is the view model for the more-words modal.
type MoreWordsData struct {
	Name  string
	Words []string
	// PermalinkPath lets follow-up requests rebuild the language if the tab
	// was dropped.
	PermalinkPath string
	CSRFToken     string
}

// BuildMoreWordsData builds the modal view model.
func BuildMoreWordsData(p *lang.Profile, version, csrf string) MoreWordsData {
	return MoreWordsData{
		Name:          p.Name,
		Words:         p.MoreWords,
		PermalinkPath: p.PermalinkPath(version),
		CSRFToken:     csrf,
	}
}
