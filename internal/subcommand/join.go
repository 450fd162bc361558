package subcommand

import (
	"bytes"
	"io"
	"os"

	"github.com/dsv-cli/dsv/internal/record"
)

// JoinMode selects which unmatched rows are replayed after the
// matched cross product.
type JoinMode int

const (
	JoinInner JoinMode = iota
	JoinLeft
	JoinRight
	JoinOuter
)

// Join builds a hash map of the right-hand file's rows keyed by its
// join columns, then for every left row emits the cross product of
// matches. Unmatched left rows are emitted at once (left/outer modes);
// unmatched right rows are replayed at EOF (right/outer). Grounded on
// original_source/src/subcommands/join.rs's two-thread merge,
// generalized here to "read the whole right side up front" since Go
// channels make a second goroutine unnecessary for a bounded side
// file.
type Join struct {
	Base

	RightPath        string
	LeftKeyIndices   []int
	RightKeyIndices  []int
	Mode             JoinMode
	RightIFS         record.IFS

	rightHeader record.Row
	rightByKey  map[string][]record.Row
	rightMatched map[string]bool
	leftHeader  record.Row
}

func NewJoin(b Base, rightPath string, leftKeys, rightKeys []int, mode JoinMode, rightIFS record.IFS) *Join {
	return &Join{
		Base:            b,
		RightPath:       rightPath,
		LeftKeyIndices:  leftKeys,
		RightKeyIndices: rightKeys,
		Mode:            mode,
		RightIFS:        rightIFS,
	}
}

func (j *Join) OnStart() error {
	f, err := os.Open(j.RightPath)
	if err != nil {
		return err
	}
	defer f.Close()

	lr := record.NewLineReader(f, []byte("\n"))
	p := &record.Parser{IFS: j.RightIFS}
	j.rightByKey = make(map[string][]record.Row)
	j.rightMatched = make(map[string]bool)

	first := true
	for {
		line, _, rerr := lr.ReadLine()
		if rerr != nil {
			if rerr != io.EOF {
				return rerr
			}
			break
		}
		row, incomplete, perr := p.Parse(line)
		if perr != nil {
			return perr
		}
		if incomplete {
			continue
		}
		if first {
			first = false
			j.rightHeader = row
			p.SetHeaderLen(len(row))
			continue
		}
		key := joinKey(row, j.RightKeyIndices)
		j.rightByKey[key] = append(j.rightByKey[key], row)
	}
	return nil
}

func joinKey(row record.Row, indices []int) string {
	var buf bytes.Buffer
	for _, i := range indices {
		if i >= 0 && i < len(row) {
			buf.Write(row[i])
		}
		buf.WriteByte(0)
	}
	return buf.String()
}

func (j *Join) OnHeader(row record.Row) (Signal, error) {
	j.leftHeader = row
	merged := append(row.Clone(), j.rightHeader...)
	if err := j.SendHeader(merged); err != nil {
		return SigBreak, err
	}
	return SigContinue, nil
}

func (j *Join) OnRow(row record.Row) (Signal, error) {
	key := joinKey(row, j.LeftKeyIndices)
	matches := j.rightByKey[key]
	if len(matches) == 0 {
		if j.Mode == JoinLeft || j.Mode == JoinOuter {
			filler := make(record.Row, len(j.rightHeader))
			for i := range filler {
				filler[i] = []byte{}
			}
			if err := j.SendRow(append(row.Clone(), filler...)); err != nil {
				return SigBreak, err
			}
		}
		return SigContinue, nil
	}
	j.rightMatched[key] = true
	for _, rightRow := range matches {
		if err := j.SendRow(append(row.Clone(), rightRow...)); err != nil {
			return SigBreak, err
		}
	}
	return SigContinue, nil
}

func (j *Join) OnEof() error {
	if j.Mode == JoinRight || j.Mode == JoinOuter {
		for key, rows := range j.rightByKey {
			if j.rightMatched[key] {
				continue
			}
			for _, rightRow := range rows {
				filler := make(record.Row, len(j.leftHeader))
				for i := range filler {
					filler[i] = []byte{}
				}
				if err := j.SendRow(append(filler, rightRow...)); err != nil {
					return err
				}
			}
		}
	}
	return j.SendEof()
}
