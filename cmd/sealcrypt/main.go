package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sealcrypt/sealcrypt"
)

const (
	Version = "1.0.0"

	// Environment variable for the password
	PasswordEnvVar = "SEALCRYPT_PASSWORD"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		printUsage()
		return fmt.Errorf("no command specified")
	}

	command := os.Args[1]

	outputDir := "."
	quiet := false
	var paths []string

	for i := 2; i < len(os.Args); i++ {
		arg := os.Args[i]

		switch {
		case arg == "--quiet" || arg == "-q":
			quiet = true
		case strings.HasPrefix(arg, "--output="):
			outputDir = strings.TrimPrefix(arg, "--output=")
		case strings.HasPrefix(arg, "-o="):
			outputDir = strings.TrimPrefix(arg, "-o=")
		case strings.HasPrefix(arg, "-"):
			return fmt.Errorf("unknown option: %s", arg)
		default:
			paths = append(paths, arg)
		}
	}

	switch command {
	case "--encrypt", "-e":
		return encryptCommand(paths, outputDir, quiet)
	case "--decrypt", "-d":
		return decryptCommand(paths, outputDir, quiet)
	case "--check", "-c":
		return checkCommand(paths)
	case "--help", "-h":
		printUsage()
		return nil
	case "--version", "-v":
		fmt.Fprintf(os.Stderr, "sealcrypt version %s\n", Version)
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func newEngine() (*sealcrypt.Engine, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	return sealcrypt.NewEngine(settings.engineConfig(), settings.newLogger())
}

func encryptCommand(paths []string, outputDir string, quiet bool) error {
	if len(paths) != 1 {
		return fmt.Errorf("encrypt takes exactly one input path")
	}

	engine, err := newEngine()
	if err != nil {
		return err
	}

	password, err := getPasswordWithConfirm("Password: ", "Confirm password: ")
	if err != nil {
		return err
	}

	if !engine.Encrypt(paths[0], outputDir, password, progressPrinter(quiet)) {
		return fmt.Errorf("encryption failed")
	}
	return nil
}

func decryptCommand(paths []string, outputDir string, quiet bool) error {
	if len(paths) != 1 {
		return fmt.Errorf("decrypt takes exactly one input path")
	}

	engine, err := newEngine()
	if err != nil {
		return err
	}

	password, err := getPassword("Password: ")
	if err != nil {
		return err
	}

	if !engine.Decrypt(paths[0], outputDir, password, progressPrinter(quiet)) {
		return fmt.Errorf("decryption failed")
	}
	return nil
}

func checkCommand(paths []string) error {
	if len(paths) != 1 {
		return fmt.Errorf("check takes exactly one input path")
	}

	encrypted, err := sealcrypt.IsEncryptedFile(paths[0])
	if err != nil {
		return err
	}
	if !encrypted {
		return fmt.Errorf("%s is not a sealcrypt container", paths[0])
	}
	fmt.Printf("%s is a sealcrypt container\n", paths[0])
	return nil
}

// progressPrinter renders engine status strings on stderr so stdout
// stays clean for scripting.
func progressPrinter(quiet bool) sealcrypt.ProgressFunc {
	if quiet {
		return nil
	}
	return func(status string) {
		fmt.Fprintf(os.Stderr, "... %s\n", status)
	}
}

func printUsage() {
	usage := `sealcrypt - Password-based encryption for files and folders

USAGE:
    sealcrypt <command> <path> [options]

COMMANDS:
    --encrypt, -e    Encrypt a file or folder into a .sealed container
    --decrypt, -d    Restore a file or folder from a .sealed container
    --check, -c      Report whether a file is a sealcrypt container
    --help, -h       Show this help message
    --version, -v    Show version information

OPTIONS:
    --output=DIR, -o=DIR    Directory for the output artifact (default: .)
    --quiet, -q             Suppress progress output

PASSWORD:
    Set SEALCRYPT_PASSWORD environment variable, or enter interactively.

CONFIGURATION:
    Reads sealcrypt.yaml from the current directory or
    ~/.config/sealcrypt/. Every key can be overridden via environment,
    e.g. SEALCRYPT_MAX_INPUT_BYTES, SEALCRYPT_LOG_LEVEL.

EXAMPLES:
    # Encrypt a file next to it
    sealcrypt -e taxes.pdf

    # Encrypt a folder into a specific directory
    sealcrypt -e photos/ -o=/mnt/backup

    # Decrypt back
    sealcrypt -d taxes.pdf.sealed -o=restored/

SECURITY:
    - XChaCha20-Poly1305 authenticated encryption
    - Key derived with Argon2id (64 MiB, 3 iterations)
    - Repeated wrong passwords are throttled with growing delays

`
	fmt.Fprint(os.Stderr, usage)
}
