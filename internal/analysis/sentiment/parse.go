package sentiment

import (
	"errors"
	"strings"

	"github.com/seenimoa/pulsewatch/pkg/models"
)

// Reasons used when no model verdict is available.
const (
	ReasonNoText         = "No text provided"
	ReasonAnalysisFailed = "Analysis failed"
	ReasonParsingFailed  = "Parsing failed"
	ReasonUnknown        = "N/A"
)

var (
	// ErrMissingField means the model output lacks a Label or Category line.
	ErrMissingField = errors.New("sentiment: label or category missing")
	// ErrMalformed means the Label line holds something other than the three labels.
	ErrMalformed = errors.New("sentiment: unrecognised label")
)

// Fallback returns the neutral/Other triple with the given reason.
func Fallback(reason string) models.SentimentTriple {
	return models.SentimentTriple{Label: models.Neutral, Category: models.CategoryOther, Reason: reason}
}

// ParseTriple extracts Label, Category and Reason lines from raw model output.
//
// Keys are matched case-insensitively and may be wrapped in markdown bold.
// The first occurrence of each key wins. On error the returned triple is the
// matching fallback, so callers can use it either way.
func ParseTriple(raw string) (models.SentimentTriple, error) {
	var label, category, reason string
	var haveLabel, haveCategory, haveReason bool

	for _, line := range strings.Split(raw, "\n") {
		key, value, ok := splitLine(line)
		if !ok {
			continue
		}
		switch key {
		case "label":
			if !haveLabel {
				label, haveLabel = strings.ToLower(value), true
			}
		case "category":
			if !haveCategory {
				category, haveCategory = value, true
			}
		case "reason":
			if !haveReason {
				reason, haveReason = value, true
			}
		}
	}

	if !haveLabel || !haveCategory {
		return Fallback(ReasonAnalysisFailed), ErrMissingField
	}

	t := models.SentimentTriple{Label: models.Sentiment(label)}
	if !t.Label.Valid() {
		return Fallback(ReasonParsingFailed), ErrMalformed
	}
	t.Category, _ = models.ParseCategory(category)
	t.Reason = reason
	if t.Reason == "" {
		t.Reason = ReasonUnknown
	}
	return t, nil
}

// splitLine splits "Key: value" into a lower-cased key and trimmed value,
// tolerating markdown emphasis such as "**Label:** positive".
func splitLine(line string) (key, value string, ok bool) {
	k, v, found := strings.Cut(line, ":")
	if !found {
		return "", "", false
	}
	key = strings.ToLower(strings.Trim(k, " \t*-_#"))
	value = strings.Trim(v, " \t\r*_'\".")
	return key, value, key != ""
}
