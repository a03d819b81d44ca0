package main

import (
	"fmt"
	"os/exec"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
)

var (
	// Version is the current version of cv (overridden by ldflags at build time)
	Version = "0.12.0"
	// Build can be set via ldflags at compile time
	Build = "dev"
	// Commit and branch the git revision the binary was built from (optional ldflag)
	Commit = ""
	Branch = ""
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Print version information",
	GroupID: groupSetup,
	Run: func(cmd *cobra.Command, args []string) {
		commit := resolveCommitHash()
		branch := resolveBranch()

		if jsonOutput {
			result := map[string]string{
				"version": Version,
				"build":   Build,
			}
			if commit != "" {
				result["commit"] = commit
			}
			if branch != "" {
				result["branch"] = branch
			}
			outputJSON(result)
			return
		}

		fmt.Println(versionLine(commit, branch))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func versionLine(commit, branch string) string {
	switch {
	case commit != "" && branch != "":
		return fmt.Sprintf("cv version %s (%s: %s@%s)", Version, Build, branch, shortCommit(commit))
	case commit != "":
		return fmt.Sprintf("cv version %s (%s: %s)", Version, Build, shortCommit(commit))
	default:
		return fmt.Sprintf("cv version %s (%s)", Version, Build)
	}
}

func resolveCommitHash() string {
	if Commit != "" {
		return Commit
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && setting.Value != "" {
				return setting.Value
			}
		}
	}

	return ""
}

func shortCommit(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

func resolveBranch() string {
	if Branch != "" {
		return Branch
	}

	// Build-time VCS detection first
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.branch" && setting.Value != "" {
				return setting.Value
			}
		}
	}

	// Fallback: ask git at runtime. symbolic-ref works in fresh repos
	// without commits.
	cmd := exec.Command("git", "symbolic-ref", "--short", "HEAD")
	cmd.Dir = "."
	if output, err := cmd.Output(); err == nil {
		if branch := strings.TrimSpace(string(output)); branch != "" && branch != "HEAD" {
			return branch
		}
	}

	return ""
}

// FullVersionString returns the complete version string including commit
// hash, e.g. "0.12.0 (dev: main@280fbcf9a253)". Doctor embeds it in reports.
func FullVersionString() string {
	return strings.TrimPrefix(versionLine(resolveCommitHash(), resolveBranch()), "cv version ")
}
