package main

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fertilizer-guide/internal/advisory"
	"fertilizer-guide/internal/nutrient"
	"fertilizer-guide/internal/reference"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

var pageTemplate = template.Must(template.New("").ParseFS(templatesFS, "templates/*.tmpl"))

// selectPlaceholder is the first option of the crop select.
const selectPlaceholder = "Select crop"

type formView struct {
	Title           string
	Placeholder     string
	Crops           []string
	Crop            string
	N, P, K         string
	Min, Max        int
	Messages        []advisory.Message
	Graph           template.URL
	Recommendations template.HTML
}

func (a *app) newFormView() formView {
	return formView{
		Title:       "Fertilizer Guide",
		Placeholder: selectPlaceholder,
		Crops:       a.table.Crops(),
		N:           "0",
		P:           "0",
		K:           "0",
		Min:         nutrient.MinLevel,
		Max:         nutrient.MaxLevel,
	}
}

func (a *app) handleForm(c *gin.Context) {
	c.HTML(http.StatusOK, "index.tmpl", a.newFormView())
}

func (a *app) handleFormSubmit(c *gin.Context) {
	view := a.newFormView()
	view.Crop = strings.TrimSpace(c.PostForm("crop_name"))
	view.N = c.DefaultPostForm("N", "0")
	view.P = c.DefaultPostForm("P", "0")
	view.K = c.DefaultPostForm("K", "0")

	if view.Crop == "" || view.Crop == selectPlaceholder {
		view.Messages = []advisory.Message{{Level: advisory.LevelWarning, Text: "Please select a crop."}}
		c.HTML(http.StatusOK, "index.tmpl", view)
		return
	}

	reading, err := parseFormReading(view.N, view.P, view.K)
	if err != nil {
		view.Messages = []advisory.Message{{Level: advisory.LevelError, Text: err.Error()}}
		c.HTML(http.StatusBadRequest, "index.tmpl", view)
		return
	}

	ev, err := a.evaluate(view.Crop, reading)
	switch {
	case errors.Is(err, reference.ErrCropNotFound):
		view.Messages = []advisory.Message{{Level: advisory.LevelWarning, Text: "Please select a crop."}}
		c.HTML(http.StatusNotFound, "index.tmpl", view)
		return
	case err != nil:
		a.log.Error("Form evaluation failed", zap.String("crop", view.Crop), zap.Error(err))
		view.Messages = []advisory.Message{{Level: advisory.LevelError, Text: "Something went wrong, please try again."}}
		c.HTML(http.StatusInternalServerError, "index.tmpl", view)
		return
	}

	view.Messages = ev.Messages
	view.Graph = template.URL("data:image/png;base64," + ev.Graph)
	// Catalog entries are trusted HTML fragments.
	view.Recommendations = template.HTML(ev.Recommendations)
	c.HTML(http.StatusOK, "index.tmpl", view)
}

func parseFormReading(n, p, k string) (nutrient.Reading, error) {
	var r nutrient.Reading
	for _, f := range []struct {
		nutrient nutrient.Nutrient
		raw      string
		dst      *float64
	}{
		{nutrient.Nitrogen, n, &r.N},
		{nutrient.Phosphorous, p, &r.P},
		{nutrient.Potassium, k, &r.K},
	} {
		v, err := strconv.ParseFloat(strings.TrimSpace(f.raw), 64)
		if err != nil {
			return r, fmt.Errorf("%s must be a number between %d and %d.", f.nutrient, nutrient.MinLevel, nutrient.MaxLevel)
		}
		*f.dst = v
	}
	if err := r.Validate(); err != nil {
		return r, fmt.Errorf("Levels must be between %d and %d.", nutrient.MinLevel, nutrient.MaxLevel)
	}
	return r, nil
}
