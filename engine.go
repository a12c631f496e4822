package sealcrypt

import (
	"errors"
	"os"

	"github.com/sirupsen/logrus"
)

// Content-type discriminator: the first byte of the encrypted payload
// records whether the plaintext is a single file's bytes or a packed
// folder archive.
const (
	ContentTypeFile   = byte(0x00)
	ContentTypeFolder = byte(0x01)
)

// Progress status strings rendered by the caller. Failures other than
// size limits all surface as StatusFailed; the engine never explains
// why a decryption failed.
const (
	StatusReadingInput     = "reading input"
	StatusPackingFolder    = "packing folder"
	StatusDerivingKey      = "deriving key"
	StatusEncrypting       = "encrypting"
	StatusWritingOutput    = "writing output"
	StatusRateLimitWait    = "waiting before attempt"
	StatusReadingContainer = "reading container"
	StatusParsingHeader    = "parsing header"
	StatusDecrypting       = "decrypting"
	StatusRestoringOutput  = "restoring output"
	StatusDone             = "done"
	StatusFailed           = "operation failed"
)

// ProgressFunc receives human-readable status strings as an operation
// moves through its stages. It may be nil.
type ProgressFunc func(status string)

// Engine orchestrates archiving, key derivation, encryption, and
// container I/O into the two public operations Encrypt and Decrypt.
//
// The rate-limit counter is instance state mutated from the decrypt
// path; an Engine supports one operation in flight at a time, and
// concurrent calls on the same instance require external
// serialization.
type Engine struct {
	config   *Config
	logger   *logrus.Logger
	limiter  *RateLimiter
	archiver *Archiver
}

// NewEngine creates an engine. A nil config selects DefaultConfig and
// a nil logger falls back to logrus.New().
func NewEngine(config *Config, logger *logrus.Logger) (*Engine, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Engine{
		config:   config,
		logger:   logger,
		limiter:  NewRateLimiter(logger),
		archiver: NewArchiver(config.MaxInputBytes, config.MaxArchiveFiles, logger),
	}, nil
}

// Encrypt encrypts the file or folder at inputPath into a container
// placed in outputDir, named after the input with the configured
// suffix appended. It returns true on success and false on any
// failure; failure detail is deliberately collapsed to the boolean
// plus progress strings.
//
// The password slice is zeroed before Encrypt returns, on every path.
func (e *Engine) Encrypt(inputPath, outputDir string, password []byte, progress ProgressFunc) bool {
	defer Wipe(password)

	if err := e.encrypt(inputPath, outputDir, password, progress); err != nil {
		e.fail("encrypt", err, progress)
		return false
	}
	emit(progress, StatusDone)
	return true
}

// Decrypt restores the container at inputPath into outputDir, either
// as a single file or as a directory tree depending on the encrypted
// content type. Failed password guesses are throttled with an
// exponential delay after repeated failures.
//
// The password slice is zeroed before Decrypt returns, on every path.
func (e *Engine) Decrypt(inputPath, outputDir string, password []byte, progress ProgressFunc) bool {
	defer Wipe(password)

	if err := e.decrypt(inputPath, outputDir, password, progress); err != nil {
		e.fail("decrypt", err, progress)
		return false
	}
	emit(progress, StatusDone)
	return true
}

func (e *Engine) encrypt(inputPath, outputDir string, password []byte, progress ProgressFunc) error {
	if err := ValidateFilePath(inputPath); err != nil {
		return err
	}
	if len(password) == 0 {
		return NewValidationError("password", nil, "password cannot be empty")
	}

	emit(progress, StatusReadingInput)
	info, err := os.Stat(inputPath)
	if err != nil {
		return err
	}

	var payload []byte
	if info.IsDir() {
		emit(progress, StatusPackingFolder)
		packed, err := e.archiver.Pack(inputPath)
		if err != nil {
			return err
		}
		payload = append([]byte{ContentTypeFolder}, packed...)
		Wipe(packed)
	} else {
		if info.Size() > e.config.MaxInputBytes {
			return NewSizeLimitError(e.config.MaxInputBytes, info.Size())
		}
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return err
		}
		payload = append([]byte{ContentTypeFile}, data...)
		Wipe(data)
	}
	defer Wipe(payload)

	salt, err := GenerateSalt()
	if err != nil {
		return err
	}
	nonce, err := GenerateNonce()
	if err != nil {
		return err
	}

	emit(progress, StatusDerivingKey)
	key := DeriveKey(password, salt)
	defer Wipe(key)

	emit(progress, StatusEncrypting)
	ciphertext, tag, err := Seal(payload, key, nonce)
	if err != nil {
		return err
	}

	encoded, err := EncodeContainer(salt, nonce, ciphertext, tag)
	if err != nil {
		return err
	}

	emit(progress, StatusWritingOutput)
	outPath := e.encryptedOutputPath(outputDir, inputPath)
	if err := WriteContainerFile(outPath, encoded); err != nil {
		return err
	}

	e.logger.WithFields(logrus.Fields{
		"event":  "encrypt_complete",
		"output": outPath,
		"bytes":  len(encoded),
	}).Info("encryption finished")
	return nil
}

func (e *Engine) decrypt(inputPath, outputDir string, password []byte, progress ProgressFunc) error {
	if err := ValidateFilePath(inputPath); err != nil {
		return err
	}
	if len(password) == 0 {
		return NewValidationError("password", nil, "password cannot be empty")
	}

	if e.limiter.Delay() > 0 {
		emit(progress, StatusRateLimitWait)
	}
	e.limiter.Wait()

	emit(progress, StatusReadingContainer)
	info, err := os.Stat(inputPath)
	if err != nil {
		return err
	}
	// A valid container is at most the header plus the bounded payload
	// (content-type byte included) plus the tag. Anything larger cannot
	// decrypt and is rejected before it is read into memory.
	maxContainer := e.config.MaxInputBytes + int64(HeaderSize+TagSize+1)
	if info.Size() > maxContainer {
		return NewSizeLimitError(maxContainer, info.Size())
	}
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}

	// A malformed container is not a password guess; format failures
	// do not touch the rate limiter.
	emit(progress, StatusParsingHeader)
	container, err := DecodeContainer(data)
	if err != nil {
		return err
	}

	emit(progress, StatusDerivingKey)
	key := DeriveKey(password, container.Salt)
	defer Wipe(key)

	emit(progress, StatusDecrypting)
	payload, err := Open(container.Ciphertext, container.Tag, key, container.Nonce)
	if err != nil {
		if errors.Is(err, ErrAuthFailed) {
			e.limiter.RecordFailure()
		}
		return err
	}
	e.limiter.Reset()
	defer Wipe(payload)

	if len(payload) < 1 {
		return ErrInvalidHeader
	}
	contentType, body := payload[0], payload[1:]

	emit(progress, StatusRestoringOutput)
	outPath := e.decryptedOutputPath(outputDir, inputPath)

	switch contentType {
	case ContentTypeFile:
		if err := writeVerifiedFile(outPath, body, 0644); err != nil {
			return err
		}
	case ContentTypeFolder:
		result, err := e.archiver.Unpack(body, outPath)
		if err != nil {
			// Leave the filesystem as if the operation never started.
			os.RemoveAll(outPath)
			return err
		}
		if result.SkippedEntries > 0 {
			e.logger.WithFields(logrus.Fields{
				"event":   "decrypt_entries_skipped",
				"skipped": result.SkippedEntries,
			}).Warn("some archive entries were rejected during restore")
		}
	default:
		return ErrInvalidHeader
	}

	e.logger.WithFields(logrus.Fields{
		"event":  "decrypt_complete",
		"output": outPath,
	}).Info("decryption finished")
	return nil
}

// fail logs the real error and reports a caller-safe status. Size
// limit messages leak no secret and are surfaced verbatim; everything
// else collapses to StatusFailed.
func (e *Engine) fail(operation string, err error, progress ProgressFunc) {
	e.logger.WithFields(logrus.Fields{
		"event":     operation + "_failed",
		"operation": operation,
	}).WithError(err).Warn("operation failed")

	if IsSizeLimitError(err) {
		emit(progress, err.Error())
		return
	}
	emit(progress, StatusFailed)
}

func emit(progress ProgressFunc, status string) {
	if progress != nil {
		progress(status)
	}
}
