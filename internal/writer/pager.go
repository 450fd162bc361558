package writer

import (
	"io"
	"os"
	"os/exec"
)

type pagerHandle struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
}

// startPager spawns `less -RX`, adding --header=1 when a header will
// be emitted so the header row stays pinned while scrolling.
func startPager(willEmitHeader bool) (*pagerHandle, error) {
	args := []string{"-RX"}
	if willEmitHeader {
		args = append(args, "--header=1")
	}
	cmd := exec.Command("less", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &pagerHandle{cmd: cmd, stdin: stdin}, nil
}

func (p *pagerHandle) close() error {
	_ = p.stdin.Close()
	return p.cmd.Wait()
}
