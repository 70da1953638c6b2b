package builder

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/go-hclog"

	pspfcrypto "github.com/provide-io/pspf/pkg/pspf/crypto"
	"github.com/provide-io/pspf/pkg/pspf/format"
	"github.com/provide-io/pspf/pkg/pspf/metadata"
)

// Build assembles a complete PSPF/2025 package per spec §4.3, grounded on
// the teacher's builder.go doBuild pipeline: stage slots, build and sign
// canonical metadata, compute slot offsets in a pre-pass, and write the
// package in one forward pass with the spec-literal on-disk layout
// (launcher | index | metadata | slots... | trailer), rather than the
// teacher's combined-EOF-block layout.
func Build(opts Options, logger hclog.Logger) error {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	launcherBytes, err := os.ReadFile(opts.LauncherPath)
	if err != nil {
		return fmt.Errorf("pspf: read launcher %s: %w", opts.LauncherPath, err)
	}

	seed := opts.DeterministicSeed
	logger.Info("📦 staging slots", "count", len(opts.Slots))
	staged, err := stageSlots(opts.Slots, seed, logger)
	if err != nil {
		return fmt.Errorf("pspf: %w", err)
	}

	pub, priv, err := resolveKeypair(opts)
	if err != nil {
		return fmt.Errorf("pspf: resolve keypair: %w", err)
	}

	meta := buildMetadata(opts, staged, seed)
	stampSignature(meta, pub)

	canonical, err := metadata.Canonical(meta)
	if err != nil {
		return fmt.Errorf("pspf: canonicalize metadata: %w", err)
	}
	gzipped, err := gzipBytes(canonical)
	if err != nil {
		return fmt.Errorf("pspf: gzip metadata: %w", err)
	}

	signature := pspfcrypto.Sign(priv, canonical)

	launcherSize := uint64(len(launcherBytes))
	metadataOffset := launcherSize + format.IndexSize
	metadataSize := uint64(len(gzipped))
	firstSlotOffset := metadataOffset + metadataSize

	descriptors := make([]format.SlotDescriptor, len(staged))
	offset := firstSlotOffset
	for i, s := range staged {
		offset = alignOffset(offset, 8)
		checksum := format.ChecksumBytes(s.stored)
		opcodes, _ := format.PackOperations(s.opcodes)
		descriptors[i] = format.SlotDescriptor{
			ID:           uint64(i),
			NameHash:     format.HashName(s.cfg.ID),
			Offset:       offset,
			Size:         uint64(len(s.stored)),
			OriginalSize: s.originalSize,
			Operations:   opcodes,
			Checksum:     checksum,
			Purpose:      s.cfg.Purpose,
			Lifecycle:    s.cfg.Lifecycle,
			Priority:     128,
			PlatformReq:  s.cfg.PlatformReq,
			Permissions:  defaultPermissions(s.cfg.Permissions),
		}
		offset += uint64(len(s.stored))
	}

	idx := &format.Index{
		FormatVersion:   format.Version,
		LauncherSize:    launcherSize,
		MetadataOffset:  metadataOffset,
		MetadataSize:    metadataSize,
		SlotTableOffset: format.SlotTableOffset,
		Ed25519Signature: signature,
		Slots:           descriptors,
	}
	copy(idx.Ed25519PublicKey[:], pub)

	indexBytes, err := format.EncodeIndex(idx)
	if err != nil {
		return fmt.Errorf("pspf: encode index: %w", err)
	}

	if usePEResourceEmbedding(opts.LauncherPath) {
		if err := writeViaResourceEmbedding(opts, launcherBytes, indexBytes, gzipped, staged, descriptors, logger); err != nil {
			return err
		}
		logger.Info("✅ package built (PE resource)", "path", opts.OutputPath, "slots", len(staged))
		return nil
	}

	out, err := os.OpenFile(opts.OutputPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o755)
	if err != nil {
		return fmt.Errorf("pspf: create output %s: %w", opts.OutputPath, err)
	}
	defer out.Close()

	writer := &offsetWriter{f: out}
	writer.write(launcherBytes)
	writer.write(indexBytes)
	writer.write(gzipped)
	for i, s := range staged {
		pad := int64(descriptors[i].Offset) - writer.pos
		if pad > 0 {
			writer.write(make([]byte, pad))
		}
		writer.write(s.stored)
	}
	writer.write(format.Trailer[:])
	if writer.err != nil {
		return fmt.Errorf("pspf: write package: %w", writer.err)
	}

	if err := out.Chmod(0o755); err != nil {
		logger.Debug("failed to set executable permission", "error", err)
	}

	logger.Info("✅ package built", "path", opts.OutputPath, "slots", len(staged), "size", writer.pos)
	return nil
}

// writeViaResourceEmbedding assembles the same payload bytes the
// appended-EOF path would produce (index + metadata + slots + trailer,
// offsets left file-absolute so the index is byte-identical either way)
// and embeds them as a PE resource on a copy of the launcher rather than
// concatenating them, per spec expansion for Windows PE targets.
func writeViaResourceEmbedding(opts Options, launcherBytes, indexBytes, gzipped []byte, staged []stagedSlot, descriptors []format.SlotDescriptor, logger hclog.Logger) error {
	var payload bytes.Buffer
	payload.Write(indexBytes)
	payload.Write(gzipped)
	pos := int64(len(launcherBytes)) + int64(len(indexBytes)) + int64(len(gzipped))
	for i, s := range staged {
		pad := int64(descriptors[i].Offset) - pos
		if pad > 0 {
			payload.Write(make([]byte, pad))
			pos += pad
		}
		payload.Write(s.stored)
		pos += int64(len(s.stored))
	}
	payload.Write(format.Trailer[:])

	if err := os.WriteFile(opts.OutputPath, launcherBytes, 0o755); err != nil {
		return fmt.Errorf("pspf: write launcher copy %s: %w", opts.OutputPath, err)
	}
	if err := embedAsPEResource(opts.OutputPath, payload.Bytes(), logger); err != nil {
		return fmt.Errorf("pspf: embed PE resource: %w", err)
	}
	return nil
}

// resolveKeypair implements the builder's three key management modes:
// deterministic (SHA-512 seed derivation), external (caller-supplied PEM
// or raw seed), and random (the default).
func resolveKeypair(opts Options) (ed25519.PublicKey, ed25519.PrivateKey, error) {
	switch {
	case opts.DeterministicSeed != "":
		pub, priv := pspfcrypto.KeypairFromSeed(opts.DeterministicSeed)
		return pub, priv, nil
	case len(opts.PrivateKeyPEM) > 0:
		priv, err := pspfcrypto.LoadPrivateKey(opts.PrivateKeyPEM)
		if err != nil {
			return nil, nil, err
		}
		return priv.Public().(ed25519.PublicKey), priv, nil
	default:
		return pspfcrypto.KeypairRandom()
	}
}

func buildMetadata(opts Options, staged []stagedSlot, seed string) *metadata.Metadata {
	slots := make([]metadata.SlotInfo, len(staged))
	for i, s := range staged {
		sum := sha256.Sum256(s.stored)
		slots[i] = s.toSlotInfo(hex.EncodeToString(sum[:]))
	}

	timestamp := buildTimestamp(seed)

	return &metadata.Metadata{
		Format:  fmt.Sprintf("PSPF/%08x", format.Version),
		Package: metadata.PackageInfo(opts.Package),
		Execution: metadata.ExecutionInfo{
			Command:     opts.Execution.Command,
			Environment: opts.Execution.Environment,
		},
		Slots: slots,
		Build: metadata.BuildInfo{
			Timestamp: timestamp,
			Builder:   "pspf-build",
			Seed:      seed,
		},
	}
}

// stampSignature records the signing algorithm actually used. The
// teacher's builder.go hardcodes "ecdsa-p256" here regardless of the
// key type in use; this is fixed to always name the real algorithm.
func stampSignature(meta *metadata.Metadata, pub ed25519.PublicKey) {
	meta.Signature = metadata.SignatureInfo{
		Algorithm: "ed25519",
		PublicKey: hex.EncodeToString(pub),
	}
}

// buildTimestamp follows the teacher's getBuilderTimestamp fallback
// chain (SOURCE_DATE_EPOCH env var -> seed-derived pseudo-timestamp ->
// wall clock), restricted so wall-clock is never used when a seed is
// supplied, satisfying testable property #3 (determinism).
func buildTimestamp(seed string) string {
	if epoch := os.Getenv("SOURCE_DATE_EPOCH"); epoch != "" {
		if secs, err := strconv.ParseInt(epoch, 10, 64); err == nil {
			return time.Unix(secs, 0).UTC().Format(time.RFC3339)
		}
	}
	if seed != "" {
		h := fnv.New64a()
		h.Write([]byte(seed))
		pseudoSecs := int64(h.Sum64() % (10 * 365 * 24 * 3600))
		return time.Unix(pseudoSecs, 0).UTC().Format(time.RFC3339)
	}
	return time.Now().UTC().Format(time.RFC3339)
}

func alignOffset(offset uint64, alignment uint64) uint64 {
	return (offset + alignment - 1) &^ (alignment - 1)
}

// offsetWriter is a small forward-only writer that tracks its position
// and sticks on the first error, mirroring the teacher's single forward
// assembly pass in doBuild.
type offsetWriter struct {
	f   *os.File
	pos int64
	err error
}

func (w *offsetWriter) write(p []byte) {
	if w.err != nil || len(p) == 0 {
		return
	}
	n, err := w.f.Write(p)
	w.pos += int64(n)
	w.err = err
}
