//go:build ignore

// build.go - valuation build script
// Usage: go run build.go [-target=TARGET]
// Targets: all, test, clean, release

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	module     = "valuationcli"
	binaryName = "valuation"
	sourcePath = "./cmd/valuation"
)

// BuildContext holds configuration for the build process
type BuildContext struct {
	Verbose bool
	Version string
}

var (
	rootDir string
	distDir string

	// Release platforms as GOOS/GOARCH
	releaseTargets = []string{
		"linux/amd64",
		"linux/arm64",
		"darwin/arm64",
		"windows/amd64",
	}

	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	version := flag.String("version", "", "Version stamped into the binary (default: git describe)")
	flag.Parse()

	cwd, err := os.Getwd()
	if err != nil {
		printError(fmt.Sprintf("Failed to get current directory: %v", err))
		os.Exit(1)
	}
	rootDir = cwd
	distDir = filepath.Join(rootDir, "dist")

	if runtime.GOOS == "windows" {
		colorReset, colorRed, colorGreen, colorYellow, colorBlue, colorCyan = "", "", "", "", "", ""
	}

	printHeader()
	startTime := time.Now()

	ctx := &BuildContext{Verbose: *verbose, Version: *version}
	if ctx.Version == "" {
		ctx.Version = gitOutput("describe", "--tags", "--always", "--dirty")
	}

	switch *target {
	case "all":
		build(ctx, runtime.GOOS, runtime.GOARCH)
	case "test":
		runTests(ctx.Verbose)
	case "clean":
		clean()
	case "release":
		buildRelease(ctx)
	default:
		showHelp()
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Build completed in %s", time.Since(startTime).Round(time.Millisecond)))
}

func printHeader() {
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println(colorCyan + "        valuation - Build System           " + colorReset)
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println()
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

func printWarning(msg string) {
	fmt.Printf("%s[WARNING]%s %s\n", colorYellow, colorReset, msg)
}

// gitOutput runs git and returns trimmed stdout, or "unknown"
func gitOutput(args ...string) string {
	out, err := exec.Command("git", args...).Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

// ldflags stamps version information into pkg/contracts
func ldflags(ctx *BuildContext) string {
	pkg := module + "/pkg/contracts"
	return strings.Join([]string{
		"-s -w",
		fmt.Sprintf("-X %s.Version=%s", pkg, ctx.Version),
		fmt.Sprintf("-X %s.BuildTime=%s", pkg, time.Now().UTC().Format(time.RFC3339)),
		fmt.Sprintf("-X %s.GitCommit=%s", pkg, gitOutput("rev-parse", "--short", "HEAD")),
		fmt.Sprintf("-X %s.GitBranch=%s", pkg, gitOutput("rev-parse", "--abbrev-ref", "HEAD")),
	}, " ")
}

// build compiles the command for one platform into dist/
func build(ctx *BuildContext, goos, goarch string) {
	name := binaryName
	if goos != runtime.GOOS || goarch != runtime.GOARCH {
		name = fmt.Sprintf("%s-%s-%s", binaryName, goos, goarch)
	}
	if goos == "windows" {
		name += ".exe"
	}
	outputPath := filepath.Join(distDir, name)

	printInfo(fmt.Sprintf("Building %s for %s/%s...", name, goos, goarch))

	args := []string{"build"}
	if ctx.Verbose {
		args = append(args, "-v")
	}
	args = append(args, "-trimpath", "-ldflags", ldflags(ctx), "-o", outputPath, sourcePath)

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0", "GOOS="+goos, "GOARCH="+goarch)
	cmd.Stderr = os.Stderr
	if ctx.Verbose {
		fmt.Printf("Running: go %s\n", strings.Join(args, " "))
		cmd.Stdout = os.Stdout
	}

	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Failed to build %s: %v", name, err))
		os.Exit(1)
	}

	if info, err := os.Stat(outputPath); err == nil {
		sizeMB := float64(info.Size()) / 1024 / 1024
		printSuccess(fmt.Sprintf("Built %s (%.1f MB)", name, sizeMB))
	}
}

func runTests(verbose bool) {
	printInfo("Running Go tests...")
	args := []string{"test", "-race"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Go tests failed: %v", err))
		os.Exit(1)
	}
	printSuccess("All tests passed")
}

func clean() {
	printInfo("Cleaning build artifacts...")
	if err := os.RemoveAll(distDir); err != nil {
		printError(fmt.Sprintf("Failed to clean dist directory: %v", err))
		os.Exit(1)
	}
	printSuccess("Build artifacts cleaned")
}

func buildRelease(ctx *BuildContext) {
	printInfo("Building release version " + ctx.Version + "...")
	if ctx.Version == "unknown" {
		printWarning("No git version found; pass -version to stamp the release")
	}
	clean()
	for _, target := range releaseTargets {
		goos, goarch, _ := strings.Cut(target, "/")
		build(ctx, goos, goarch)
	}

	versionFile := filepath.Join(distDir, "VERSION.txt")
	content := fmt.Sprintf("valuation %s\nBuilt: %s\n", ctx.Version, time.Now().Format("2006-01-02 15:04:05"))
	if err := os.WriteFile(versionFile, []byte(content), 0644); err != nil {
		printWarning(fmt.Sprintf("Failed to write %s: %v", versionFile, err))
	}
	printSuccess("Release build completed")
}

func showHelp() {
	fmt.Println("Usage: go run build.go [-target=TARGET] [-v] [-version=VERSION]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  all       Build valuation for this platform (default)")
	fmt.Println("  test      Run all Go tests with the race detector")
	fmt.Println("  clean     Remove dist/")
	fmt.Println("  release   Cross-compile valuation for every release platform")
}
