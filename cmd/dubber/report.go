package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/cyprienbrisset/video-translate-to-text/internal/engine/resync"
	"github.com/cyprienbrisset/video-translate-to-text/internal/summary"
	"github.com/cyprienbrisset/video-translate-to-text/internal/transcript"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/audio"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/provider/tts"
)

// renderReport prints one row per rendered slot followed by a summary line.
func renderReport(w io.Writer, res *resync.Result, rate int) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Kind", "Start", "End", "Outcome", "Speed", "Source", "Note"})

	counts := map[resync.Outcome]int{}
	for _, rep := range res.Reports {
		counts[rep.Outcome]++
		speed := "-"
		if rep.SpeedFactor > 0 {
			speed = fmt.Sprintf("%.2fx", rep.SpeedFactor)
		}
		note := ""
		if rep.Err != nil {
			note = rep.Err.Error()
		}
		tw.AppendRow(table.Row{
			rep.Index,
			rep.Kind.String(),
			fmt.Sprintf("%.2f", rep.Slot.Start),
			fmt.Sprintf("%.2f", rep.Slot.End),
			string(rep.Outcome),
			speed,
			fmt.Sprintf("%.2fs", float64(rep.SourceSamples)/float64(rate)),
			note,
		})
	}
	tw.AppendFooter(table.Row{
		"", "", "", "",
		fmt.Sprintf("%d degraded", len(res.Degraded())),
		"", fmt.Sprintf("%.2fs", res.Track.Seconds()), "",
	})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
		{Number: 8, WidthMax: 48},
	})
	tw.Render()

	fmt.Fprintf(w, "verbatim=%d stretched=%d truncated=%d padded=%d silence=%d\n",
		counts[resync.OutcomeVerbatim],
		counts[resync.OutcomeStretched],
		counts[resync.OutcomeTruncated],
		counts[resync.OutcomePadded],
		counts[resync.OutcomeSilence],
	)
}

// renderVoices prints the voices offered by a TTS provider.
func renderVoices(w io.Writer, voices []tts.VoiceProfile) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Name", "Provider", "Language"})
	for _, v := range voices {
		tw.AppendRow(table.Row{v.ID, v.Name, v.Provider, v.Language})
	}
	tw.Render()
}

// renderSummaries prints one row per summary length.
func renderSummaries(w io.Writer, sums *transcript.Summaries) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Length", "Words", "Summary"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, WidthMax: 80},
	})
	for _, l := range summary.Lengths {
		var s string
		switch l {
		case summary.Short:
			s = sums.Short
		case summary.Medium:
			s = sums.Medium
		case summary.Long:
			s = sums.Long
		}
		tw.AppendRow(table.Row{string(l), len(strings.Fields(s)), s})
	}
	tw.Render()
}

// sampleRate is the rate every command works at.
const sampleRate = audio.SampleRate
