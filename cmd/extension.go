package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"syscall"

	zlog "github.com/rs/zerolog/log"
)

// Environment variables passing the global flags to extensions.
const (
	EnvConfig    = "FINASYNC_CONFIG"
	EnvStore     = "FINASYNC_STORE"
	EnvStorePath = "FINASYNC_STORE_PATH"
	EnvSession   = "FINASYNC_SESSION"
	EnvVerbose   = "FINASYNC_VERBOSE"
)

// extensionEnv returns the environment of extensions: the current one plus
// the global flags that are set.
func extensionEnv() []string {
	env := os.Environ()
	add := func(key, value string) {
		if value != "" {
			env = append(env, key+"="+value)
		}
	}
	add(EnvConfig, *configPath)
	add(EnvStore, *storeFlag)
	add(EnvStorePath, *storePath)
	add(EnvSession, *sessionFlag)
	add(EnvVerbose, strconv.FormatBool(*Verbose))
	return env
}

// RunExtension attempts to find and execute an external finasync-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found or executed.
func RunExtension(subcommand string, args []string) (bool, int) {
	externalCmdName := "finasync-" + subcommand

	lp, err := exec.LookPath(externalCmdName)
	if err != nil {
		zlog.Debug().Err(err).Str("extension", externalCmdName).Msg("extension not found in PATH")
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = extensionEnv()

	if err := cmd.Run(); err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			if status, ok := exitError.Sys().(syscall.WaitStatus); ok {
				return true, status.ExitStatus()
			}
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", externalCmdName, err)
		return true, 1
	}
	return true, 0
}
