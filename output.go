package main

import (
	"fmt"
	"io"
	"strings"

	"ewintr.nl/tubedigest/process"
)

func printOutcomes(w io.Writer, outcomes []process.Outcome) {
	for i, o := range outcomes {
		if i > 0 {
			fmt.Fprintln(w)
		}
		printOutcome(w, o)
	}
}

func printOutcome(w io.Writer, o process.Outcome) {
	label := o.Job.Value
	if o.YoutubeID != "" {
		label = string(o.YoutubeID)
	}
	if label == "" {
		label = string(o.Job.Kind)
	}

	if !o.Status.Delivered() || o.Video == nil {
		fmt.Fprintf(w, "%s [%s]", label, o.Status)
		if o.Err != nil {
			fmt.Fprintf(w, ": %v", o.Err)
		}
		fmt.Fprintln(w)
		return
	}

	v := o.Video
	fmt.Fprintf(w, "%s [%s]\n", v.Title, o.Status)
	fmt.Fprintln(w, v.YoutubeID.URL())
	fmt.Fprintln(w, v.Enrichment.Summary)
	if v.Enrichment.Sentiment != "" {
		fmt.Fprintf(w, "sentiment: %s (%.2f)\n", v.Enrichment.Sentiment, v.Enrichment.Confidence)
	}
	if len(v.Enrichment.KeyTopics) > 0 {
		fmt.Fprintf(w, "topics: %s\n", strings.Join(v.Enrichment.KeyTopics, ", "))
	}
}

// failed counts the outcomes that hit an infrastructure error. Skipped
// videos are a normal result.
func failed(outcomes []process.Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Status == process.StatusFailed {
			n++
		}
	}
	return n
}
