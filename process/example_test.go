package process_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geb0598/coj-go/errkind"
	"github.com/geb0598/coj-go/ipc"
	"github.com/geb0598/coj-go/process"
)

func assertNoErr(err error) {
	if err != nil {
		panic("example failure: unexpected err: " + err.Error())
	}
}

func assertErr(err error) {
	if err == nil {
		panic("example failure: expected an error")
	}
}

// Running echo with stdout captured through a pipe.
func Example_echoStdout() {
	p, err := process.New("echo Hello",
		process.WithStdout(ipc.NewDestinationPipe()))
	assertNoErr(err)
	defer p.Close()

	code, err := p.Wait(context.Background())
	assertNoErr(err)

	out, ok := p.StdoutHandle().Get()
	if !ok {
		panic("example failure: stdout handle expired early")
	}
	buf, kerr := out.ReadAll(context.Background())
	if !errkind.IsOk(kerr) {
		panic("example failure: reading stdout: " + kerr.Error())
	}

	fmt.Printf("exit=%d out=%q\n", code, string(buf.Bytes()))
	// Output:
	// exit=0 out="Hello\n"
}

// Running cat with both stdin and stdout piped, using Communicate to
// avoid the write/read deadlock.
func Example_catCommunicate() {
	p, err := process.New("cat",
		process.WithStdin(ipc.NewSourcePipe()),
		process.WithStdout(ipc.NewDestinationPipe()))
	assertNoErr(err)
	defer p.Close()

	result, err := p.Communicate(context.Background(), []byte("round trip"))
	assertNoErr(err)

	fmt.Printf("wrote=%d out=%q\n", result.BytesWritten, string(result.Stdout))
	// Output:
	// wrote=10 out="round trip"
}

// A shell invocation with stderr merged into stdout.
func Example_mergeStderrIntoStdout() {
	p, err := process.New(`bash -c "echo out-line; echo err-line 1>&2"`,
		process.WithStdout(ipc.NewDestinationPipe()),
		process.WithStderr(ipc.NewDestinationStdout()))
	assertNoErr(err)
	defer p.Close()

	result, err := p.Communicate(context.Background(), nil)
	assertNoErr(err)

	fmt.Printf("merged=%q\n", string(result.Stdout))
	// Output:
	// merged="out-line\nerr-line\n"
}

// A long-running child that outlives a short Wait deadline; the caller
// escalates to Kill and observes a negative, signal-encoded exit code.
func Example_waitTimeoutThenKill() {
	p, err := process.New("sleep 5")
	assertNoErr(err)
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = p.Wait(ctx)
	assertErr(err)

	assertNoErr(p.Kill())
	code, err := p.Wait(context.Background())
	assertNoErr(err)

	fmt.Println(code < 0)
	// Output:
	// true
}

// Communicate itself enforces a deadline and returns partial results.
func Example_communicateTimeout() {
	p, err := process.New("sleep 5",
		process.WithStdout(ipc.NewDestinationPipe()))
	assertNoErr(err)
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = p.Communicate(ctx, nil)
	assertErr(err)

	fmt.Println("timed out:", err != nil)
	// Output:
	// timed out: true
}

// An empty command is a caller error, not a syscall failure.
func Example_emptyCommandIsInvalidArg() {
	_, err := process.New("")
	assertErr(err)
	var kerr *errkind.Error
	fmt.Println(errors.As(err, &kerr) && kerr.Kind == errkind.InvalidArg)
	// Output:
	// true
}

// A nonexistent executable surfaces as an OS errno, not InvalidArg.
func Example_nonexistentCommandIsErrno() {
	_, err := process.New("nonexistent_xyz")
	assertErr(err)
	var kerr *errkind.Error
	fmt.Println(errors.As(err, &kerr) && kerr.Kind == errkind.Errno)
	// Output:
	// true
}
