package cli_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/calvinalkan/nmsq/internal/cli"

	flag "github.com/spf13/pflag"
)

// recordingCmd returns a command that records the args Exec receives.
func recordingCmd(namePrompt string, got *[]string, called *bool) *cli.Command {
	return &cli.Command{
		Flags:      flag.NewFlagSet("lookup", flag.ContinueOnError),
		Usage:      "lookup <name>",
		Short:      "Look something up",
		NamePrompt: namePrompt,
		Exec: func(_ context.Context, _ *cli.IO, args []string) error {
			*called = true
			*got = args

			return nil
		},
	}
}

func runCmd(cmd *cli.Command, stdin string, args ...string) (string, string, int) {
	var out, errOut bytes.Buffer

	var in io.Reader
	if stdin != "" {
		in = strings.NewReader(stdin)
	}

	code := cmd.Run(context.Background(), cli.NewIO(in, &out, &errOut), args)

	return out.String(), errOut.String(), code
}

func Test_Command_Joins_Name_Words_When_Name_Prompt_Set(t *testing.T) {
	t.Parallel()

	var (
		got    []string
		called bool
	)

	_, _, code := runCmd(recordingCmd("Item: ", &got, &called), "", "Condensed", " Carbon ")
	if got, want := code, 0; got != want {
		t.Fatalf("exit=%d, want=%d", got, want)
	}

	if diff := cmp.Diff([]string{"Condensed  Carbon"}, got); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func Test_Command_Prompts_On_Stderr_When_Name_Missing(t *testing.T) {
	t.Parallel()

	var (
		got    []string
		called bool
	)

	stdout, stderr, code := runCmd(recordingCmd("Item: ", &got, &called), "Glass\n")
	if got, want := code, 0; got != want {
		t.Fatalf("exit=%d, want=%d", got, want)
	}

	if diff := cmp.Diff([]string{"Glass"}, got); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}

	if got, want := stderr, "Item: "; got != want {
		t.Errorf("stderr=%q, want=%q", got, want)
	}

	if stdout != "" {
		t.Errorf("stdout=%q, want empty", stdout)
	}
}

func Test_Command_Prints_Error_Then_Help_On_Stderr_When_Name_Missing(t *testing.T) {
	t.Parallel()

	var (
		got    []string
		called bool
	)

	stdout, stderr, code := runCmd(recordingCmd("Item: ", &got, &called), "")
	if got, want := code, 1; got != want {
		t.Errorf("exit=%d, want=%d", got, want)
	}

	if called {
		t.Error("Exec should not run without a name")
	}

	if stdout != "" {
		t.Errorf("stdout=%q, want empty", stdout)
	}

	if !strings.HasPrefix(stderr, "error: item name is required\n\nUsage: nmsq lookup <name>\n") {
		t.Errorf("stderr should start with error then usage\nstderr:\n%s", stderr)
	}
}

func Test_Command_Passes_Args_Through_When_No_Name_Prompt(t *testing.T) {
	t.Parallel()

	var (
		got    []string
		called bool
	)

	_, _, code := runCmd(recordingCmd("", &got, &called), "", "a", "b")
	if got, want := code, 0; got != want {
		t.Fatalf("exit=%d, want=%d", got, want)
	}

	if diff := cmp.Diff([]string{"a", "b"}, got); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func Test_Command_Prints_Help_On_Stdout_When_Help_Flag(t *testing.T) {
	t.Parallel()

	var (
		got    []string
		called bool
	)

	stdout, stderr, code := runCmd(recordingCmd("Item: ", &got, &called), "", "--help")
	if got, want := code, 0; got != want {
		t.Errorf("exit=%d, want=%d", got, want)
	}

	if called {
		t.Error("Exec should not run for --help")
	}

	cli.AssertContains(t, stdout, "Usage: nmsq lookup <name>")
	cli.AssertContains(t, stdout, "Look something up")

	if stderr != "" {
		t.Errorf("stderr=%q, want empty", stderr)
	}
}

func Test_Command_Reports_Exec_Error_Without_Help_When_Exec_Fails(t *testing.T) {
	t.Parallel()

	cmd := &cli.Command{
		Flags: flag.NewFlagSet("boom", flag.ContinueOnError),
		Usage: "boom",
		Exec: func(context.Context, *cli.IO, []string) error {
			return errors.New("kaput")
		},
	}

	_, stderr, code := runCmd(cmd, "")
	if got, want := code, 1; got != want {
		t.Errorf("exit=%d, want=%d", got, want)
	}

	if got, want := stderr, "error: kaput\n"; got != want {
		t.Errorf("stderr=%q, want=%q", got, want)
	}
}
