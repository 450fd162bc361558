package subcommand

import (
	"bufio"
	"io"
	"os/exec"

	"github.com/dsv-cli/dsv/internal/record"
)

// ShellOut forks an external command, feeds it every row serialized
// with the pipeline's OFS, and re-parses its stdout as the new row
// stream — the mechanism behind both `sort` (shelling to the system
// sort) and `sqlite` (shelling to the sqlite3 CLI), per
// original_source/src/subcommands/sort.rs and sqlite.rs.
type ShellOut struct {
	Base
	Argv []string
	IFS  record.IFS
	OFS  []byte

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	parser *record.Parser
	lines  *record.LineReader
	header record.Row
}

func NewShellOut(b Base, argv []string, ifs record.IFS, ofs []byte) *ShellOut {
	return &ShellOut{Base: b, Argv: argv, IFS: ifs, OFS: ofs}
}

func (s *ShellOut) OnStart() error {
	s.cmd = exec.Command(s.Argv[0], s.Argv[1:]...)
	stdin, err := s.cmd.StdinPipe()
	if err != nil {
		return err
	}
	stdout, err := s.cmd.StdoutPipe()
	if err != nil {
		return err
	}
	s.stdin = stdin
	s.stdout = stdout
	s.parser = &record.Parser{IFS: s.IFS}
	s.lines = record.NewLineReader(stdout, []byte("\n"))
	return s.cmd.Start()
}

func (s *ShellOut) writeRow(row record.Row) error {
	w := bufio.NewWriter(s.stdin)
	for i, f := range row {
		if i > 0 {
			w.Write(s.OFS)
		}
		w.Write(f)
	}
	w.WriteByte('\n')
	return w.Flush()
}

// OnHeader forwards the header downstream immediately rather than
// feeding it to the child — the child only ever sees and returns data
// rows.
func (s *ShellOut) OnHeader(row record.Row) (Signal, error) {
	s.header = row
	if err := s.SendHeader(row); err != nil {
		return SigBreak, err
	}
	return SigContinue, nil
}

func (s *ShellOut) OnRow(row record.Row) (Signal, error) {
	if err := s.writeRow(row); err != nil {
		return SigBreak, err
	}
	return SigContinue, nil
}

func (s *ShellOut) OnEof() error {
	if err := s.stdin.Close(); err != nil {
		return err
	}

	if s.header != nil {
		s.parser.SetHeaderLen(len(s.header))
	}

	for {
		line, _, err := s.lines.ReadLine()
		if err != nil {
			if err != io.EOF {
				return err
			}
			break
		}
		row, incomplete, perr := s.parser.Parse(line)
		if perr != nil {
			return perr
		}
		if incomplete {
			continue
		}
		if err := s.SendRow(row); err != nil {
			return err
		}
	}

	if err := s.cmd.Wait(); err != nil {
		return err
	}
	return s.SendEof()
}
