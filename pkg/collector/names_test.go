package collector

import (
	"reflect"
	"testing"
)

func TestCommandName(t *testing.T) {
	cases := []struct {
		name     string
		cmdline  []string
		comm     string
		expected string
	}{
		{"absolute", []string{"/usr/lib/chromium/chrome", "--type=renderer"}, "chrome", "chrome"},
		{"relative", []string{"./server"}, "server", "server"},
		{"rewritten", []string{"nginx: worker process"}, "nginx", "nginx"},
		{"loginShell", []string{"-bash"}, "bash", "bash"},
		{"windows", []string{`C:\Java\bin\javaw.exe`, "-jar", "ide.jar"}, "javaw", "javaw"},
		{"emptyCmdline", nil, "kthreadd\n", "kthreadd"},
		{"blankArgv0", []string{"", "x"}, "sh", "sh"},
		{"rootOnly", []string{"/"}, "init", "init"},
	}
	for _, tc := range cases {
		if got := CommandName(tc.cmdline, tc.comm); got != tc.expected {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.expected, got)
		}
	}
}

func TestArgumentsDropsArgv0AndCopies(t *testing.T) {
	cmdline := []string{"java", "-jar", "app.jar"}
	args := Arguments(cmdline)
	if !reflect.DeepEqual(args, []string{"-jar", "app.jar"}) {
		t.Fatalf("unexpected args %q", args)
	}
	args[0] = "mutated"
	if cmdline[1] != "-jar" {
		t.Fatalf("arguments must not alias the command line")
	}
	if got := Arguments([]string{"sleep"}); got != nil {
		t.Fatalf("expected nil args, got %q", got)
	}
}
