// Package collector holds helpers shared by the process snapshot sources.
package collector

import (
	"path"
	"strings"
)

// CommandName returns the executable base name from argv[0]. Processes that
// rewrite their command line ("nginx: worker process", "-bash") are reduced to
// the first word and Windows executables lose their .exe suffix. comm is used
// when the command line is empty, as it is for kernel threads and zombies.
func CommandName(cmdline []string, comm string) string {
	if len(cmdline) > 0 {
		argv0, _, _ := strings.Cut(strings.TrimSpace(cmdline[0]), " ")
		argv0 = strings.ReplaceAll(argv0, `\`, "/")
		name := path.Base(argv0)
		name = strings.TrimSuffix(strings.TrimPrefix(name, "-"), ":")
		name = strings.TrimSuffix(name, ".exe")
		if name != "" && name != "." && name != "/" {
			return name
		}
	}
	return strings.TrimSpace(comm)
}

// Arguments returns the command line without argv[0].
func Arguments(cmdline []string) []string {
	if len(cmdline) < 2 {
		return nil
	}
	args := make([]string, len(cmdline)-1)
	copy(args, cmdline[1:])
	return args
}
