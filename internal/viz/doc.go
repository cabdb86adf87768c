// Package viz renders scenario runs in the terminal.
//
// Static output (class hierarchies, run summaries, transcripts and metric
// plots) is plain lipgloss text suitable for piping. [Model] is a Bubble
// Tea program that steps an experiment on a timer:
//
//	Space - Pause/Resume
//	N     - Single step while paused
//	Tab   - Cycle the plotted metric
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Finish and quit
//
// Airframe instances also get a flight track drawn on a Braille [Canvas].
package viz
