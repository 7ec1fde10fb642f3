package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/helvlang/helv/internal/bytecode"
	"github.com/helvlang/helv/internal/emit"
)

// parityResult records how the VM and the compiled emitted C each ran the
// same table.
type parityResult struct {
	VMOutput []byte
	VMErr    error

	COutput []byte
	CStderr string
	CErr    error
}

// ParityError reports that the VM and compiled C disagreed.
type ParityError struct {
	parityResult
}

func (pe *ParityError) Error() string {
	var sb strings.Builder
	sb.WriteString("VM and compiled C disagree")
	if !bytes.Equal(pe.VMOutput, pe.COutput) {
		fmt.Fprintf(&sb, "\n  VM output: %q\n  C output:  %q", pe.VMOutput, pe.COutput)
	}
	fmt.Fprintf(&sb, "\n  VM error: %v\n  C error:  %v", pe.VMErr, pe.CErr)
	if pe.CStderr != "" {
		fmt.Fprintf(&sb, "\n  C stderr: %q", pe.CStderr)
	}
	return sb.String()
}

// checkParity interprets table while, alongside, compiling its emitted C
// with cc and running the result. Both must print the same bytes and agree
// on whether the program failed.
func checkParity(ctx context.Context, table *bytecode.Table, cc string, vmOpts []VMOption, emitOpts []emit.Option) (*parityResult, error) {
	var res parityResult
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		var out bytes.Buffer
		vm := New(table, VMOptions(vmOpts...), WithOutput(&out))
		res.VMErr = vm.Run(ctx)
		res.VMOutput = out.Bytes()
		return nil
	})

	eg.Go(func() error {
		dir, err := os.MkdirTemp("", "helv-check")
		if err != nil {
			return err
		}
		defer os.RemoveAll(dir)

		bin, err := compileC(ctx, dir, table, cc, emitOpts)
		if err != nil {
			return err
		}

		var stdout, stderr bytes.Buffer
		cmd := exec.CommandContext(ctx, bin)
		cmd.Stdout, cmd.Stderr = &stdout, &stderr
		res.CErr = cmd.Run()
		res.COutput = stdout.Bytes()
		res.CStderr = stderr.String()
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	// a timed out VM proves nothing about the C side
	if errors.Is(res.VMErr, context.DeadlineExceeded) || errors.Is(res.VMErr, context.Canceled) {
		return &res, res.VMErr
	}
	if !bytes.Equal(res.VMOutput, res.COutput) || (res.VMErr == nil) != (res.CErr == nil) {
		return &res, &ParityError{res}
	}
	return &res, nil
}

func compileC(ctx context.Context, dir string, table *bytecode.Table, cc string, emitOpts []emit.Option) (string, error) {
	srcName := filepath.Join(dir, "prog.c")
	binName := filepath.Join(dir, "prog")

	var src bytes.Buffer
	if err := emit.C(&src, table, emitOpts...); err != nil {
		return "", err
	}
	if err := os.WriteFile(srcName, src.Bytes(), 0o644); err != nil {
		return "", err
	}

	build := exec.CommandContext(ctx, cc, "-o", binName, srcName)
	if out, err := build.CombinedOutput(); err != nil {
		return "", fmt.Errorf("%v failed: %w\n%s", cc, err, out)
	}
	return binName, nil
}
