package main

// splitPipeline splits an argv slice on bare "!" tokens into one
// argv-per-stage list, per spec.md §6's `! SUB1 ARGS ! SUB2 ARGS`
// pipeline form. A leading segment with no subcommand name (empty
// argv before the first "!") is dropped; callers pass the remainder
// of os.Args after global flags have already been consumed by cobra.
func splitPipeline(args []string) [][]string {
	var segments [][]string
	var cur []string
	for _, a := range args {
		if a == "!" {
			segments = append(segments, cur)
			cur = nil
			continue
		}
		cur = append(cur, a)
	}
	segments = append(segments, cur)

	out := segments[:0]
	for _, seg := range segments {
		if len(seg) > 0 {
			out = append(out, seg)
		}
	}
	return out
}
