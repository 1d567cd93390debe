package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/loomui/loom/profile"
)

func main() {
	var (
		logFile     = flag.String("log", "", "Path to profile JSONL file")
		session     = flag.String("session", "", "Filter to one session id")
		frameSeq    = flag.Uint64("frame", 0, "Show one frame's node tree")
		top         = flag.Int("top", 10, "Slowest nodes to list per frame")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *logFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: inspect -log <frames.jsonl> [-session id] [-frame seq]")
		fmt.Fprintln(os.Stderr, "       inspect -log <frames.jsonl> -i  (interactive mode)")
		os.Exit(1)
	}

	frames, err := readFrames(*logFile, *session)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(frames) == 0 {
		fmt.Fprintln(os.Stderr, "No frame records found.")
		os.Exit(1)
	}

	if *interactive {
		if err := runInteractive(*logFile, frames); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *frameSeq > 0 {
		if err := printFrame(frames, *frameSeq, *top); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	printSummary(frames)
}

// readFrames parses the JSONL stream, keeping unparseable lines out of the
// result rather than failing the whole file; a crashed session may have a
// truncated last line.
func readFrames(path, session string) ([]*profile.FrameRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	var frames []*profile.FrameRecord
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1<<20), 1<<24)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		rec := &profile.FrameRecord{}
		if err := json.Unmarshal(line, rec); err != nil {
			continue
		}
		if session != "" && rec.Session != session {
			continue
		}
		frames = append(frames, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	return frames, nil
}

func printSummary(frames []*profile.FrameRecord) {
	sessions := map[string]int{}
	modes := map[string]int{}
	lookups := map[string]uint64{}
	var totalElapsed time.Duration
	var measureCalls, stores, dirty, torn uint64

	for _, fr := range frames {
		sessions[fr.Session]++
		modes[fr.Mode]++
		totalElapsed += fr.Elapsed
		measureCalls += fr.Counters.MeasureCalls
		stores += fr.Counters.Stores
		dirty += fr.Counters.DirtyTotal
		torn += fr.Counters.TornDown
		for class, n := range fr.Counters.Lookups {
			lookups[class] += n
		}
	}

	fmt.Printf("Frames: %d across %d session(s)\n", len(frames), len(sessions))
	fmt.Printf("Total frame time: %v (avg %v)\n",
		totalElapsed.Round(time.Microsecond),
		(totalElapsed / time.Duration(len(frames))).Round(time.Microsecond))

	fmt.Printf("\nBuild modes:\n")
	for _, mode := range sortedKeys(modes) {
		fmt.Printf("  %-22s %d\n", mode, modes[mode])
	}

	fmt.Printf("\nDirty nodes: %d   Torn down: %d   Cache stores: %d\n", dirty, torn, stores)

	if measureCalls == 0 {
		return
	}

	var hits uint64
	for _, c := range profile.Classifications() {
		if c.Hit() {
			hits += lookups[c.String()]
		}
	}
	fmt.Printf("\nLayout cache: %d lookups, %.1f%% hit rate\n",
		measureCalls, 100*float64(hits)/float64(measureCalls))

	width := barWidth()
	for _, c := range profile.Classifications() {
		n := lookups[c.String()]
		if n == 0 {
			continue
		}
		bar := strings.Repeat("█", int(float64(width)*float64(n)/float64(measureCalls)))
		fmt.Printf("  %-24s %8d %s\n", c.String(), n, bar)
	}
}

// barWidth leaves room for the class name and count columns when stdout is
// a terminal; piped output gets a fixed width.
func barWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 40 {
		return w - 36
	}
	return 40
}

func printFrame(frames []*profile.FrameRecord, seq uint64, top int) error {
	var frame *profile.FrameRecord
	for _, fr := range frames {
		if fr.Seq == seq {
			frame = fr
			break
		}
	}
	if frame == nil {
		return fmt.Errorf("no frame with seq %d", seq)
	}

	fmt.Printf("Frame %d  mode=%s  elapsed=%v\n", frame.Seq, frame.Mode,
		frame.Elapsed.Round(time.Microsecond))
	if len(frame.Reasons) > 0 {
		fmt.Printf("Reasons: %s\n", strings.Join(frame.Reasons, ", "))
	}
	fmt.Printf("Dirty: %d (params %d, structure %d)  Measures: %d  Stores: %d  Torn down: %d\n",
		frame.Counters.DirtyTotal, frame.Counters.DirtyParams, frame.Counters.DirtyStructure,
		frame.Counters.MeasureCalls, frame.Counters.Stores, frame.Counters.TornDown)

	if frame.Root == nil {
		fmt.Println("\nNo node tree recorded (skipped frame).")
		return nil
	}

	fmt.Println("\nNode tree:")
	printNode(frame.Root, 0)

	slow := flattenNodes(frame.Root, nil)
	sort.Slice(slow, func(i, j int) bool { return slow[i].Elapsed > slow[j].Elapsed })
	if top > len(slow) {
		top = len(slow)
	}
	fmt.Printf("\nSlowest %d nodes:\n", top)
	for _, n := range slow[:top] {
		fmt.Printf("  %-12v %s\n", n.Elapsed, nodeLabel(n))
	}
	return nil
}

func printNode(n *profile.NodeRecord, depth int) {
	fmt.Printf("%s%s\n", strings.Repeat("  ", depth), nodeLabel(n))
	for _, c := range n.Children {
		printNode(c, depth+1)
	}
}

func nodeLabel(n *profile.NodeRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%016x", n.Type)
	if n.Key != "" {
		fmt.Fprintf(&b, "[%s]", n.Key)
	}
	if n.Logic > 0 {
		fmt.Fprintf(&b, "#%d", n.Logic)
	}
	fmt.Fprintf(&b, "  %gx%g", n.Width, n.Height)
	if n.Class != "" {
		fmt.Fprintf(&b, "  %s", n.Class)
	}
	switch {
	case n.Skipped:
		b.WriteString("  (skipped)")
	case n.Replayed:
		b.WriteString("  (replayed)")
	}
	return b.String()
}

func flattenNodes(n *profile.NodeRecord, out []*profile.NodeRecord) []*profile.NodeRecord {
	if n == nil {
		return out
	}
	out = append(out, n)
	for _, c := range n.Children {
		out = flattenNodes(c, out)
	}
	return out
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
