package builder

import (
	"fmt"
	"os"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/pspf/pkg/pspf/format"
	"github.com/provide-io/pspf/pkg/pspf/metadata"
	"github.com/provide-io/pspf/pkg/pspf/pipeline"
)

// stagedSlot is the result of running one slot's operation chain,
// grounded on the teacher's SlotProcessor.processSlot output shape
// (slot_processor.go), but produced by a worker-pool fan-out instead of
// a sequential loop (spec §5 explicitly allows parallel slot staging).
type stagedSlot struct {
	index        int
	cfg          SlotConfig
	stored       []byte
	originalSize uint64
	opcodes      []uint8
}

// stageSlots runs every slot's operation chain concurrently, bounded by
// a worker pool, and returns results in manifest order regardless of
// completion order.
func stageSlots(slots []SlotConfig, seed string, logger hclog.Logger) ([]stagedSlot, error) {
	results := make([]stagedSlot, len(slots))
	errs := make([]error, len(slots))

	const maxWorkers = 8
	workers := maxWorkers
	if len(slots) < workers {
		workers = len(slots)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				s, err := stageSlot(i, slots[i], seed, logger)
				results[i] = s
				errs[i] = err
			}
		}()
	}
	for i := range slots {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("stage slot %d (%s): %w", i, slots[i].ID, err)
		}
	}
	return results, nil
}

func stageSlot(index int, cfg SlotConfig, seed string, logger hclog.Logger) (stagedSlot, error) {
	if cfg.ID == "" {
		return stagedSlot{}, fmt.Errorf("missing required 'id' field")
	}
	if cfg.Source == "" {
		return stagedSlot{}, fmt.Errorf("missing required 'source' field")
	}
	if cfg.Target == "" {
		return stagedSlot{}, fmt.Errorf("missing required 'target' field")
	}

	opcodes, err := format.SymbolicToOperations(cfg.Operations)
	if err != nil {
		return stagedSlot{}, err
	}

	logger.Debug("📂 staging slot", "index", index, "id", cfg.ID, "source", cfg.Source, "operations", cfg.Operations)

	isArchive := len(opcodes) > 0 && opcodes[0] == format.OpTar

	var data []byte
	var originalSize uint64
	if isArchive {
		info, err := os.Stat(cfg.Source)
		if err != nil {
			return stagedSlot{}, fmt.Errorf("stat source %s: %w", cfg.Source, err)
		}
		if !info.IsDir() {
			return stagedSlot{}, fmt.Errorf("source %s must be a directory for tar operations", cfg.Source)
		}
		originalSize = uint64(dirSize(cfg.Source))
	} else {
		raw, err := os.ReadFile(cfg.Source)
		if err != nil {
			return stagedSlot{}, fmt.Errorf("read source %s: %w", cfg.Source, err)
		}
		data = raw
		originalSize = uint64(len(raw))
	}

	stored, err := pipeline.ApplyChain(data, cfg.Source, opcodes, seed)
	if err != nil {
		return stagedSlot{}, err
	}

	return stagedSlot{
		index:        index,
		cfg:          cfg,
		stored:       stored,
		originalSize: originalSize,
		opcodes:      opcodes,
	}, nil
}

func dirSize(path string) int64 {
	var total int64
	entries, err := os.ReadDir(path)
	if err != nil {
		return 0
	}
	for _, e := range entries {
		full := path + "/" + e.Name()
		if e.IsDir() {
			total += dirSize(full)
			continue
		}
		if info, err := e.Info(); err == nil {
			total += info.Size()
		}
	}
	return total
}

// toSlotInfo renders a stagedSlot as its metadata.SlotInfo counterpart.
func (s stagedSlot) toSlotInfo(checksumHex string) metadata.SlotInfo {
	return metadata.SlotInfo{
		Name:         s.cfg.ID,
		Purpose:      purposeName(s.cfg.Purpose),
		Lifecycle:    format.LifecycleName(s.cfg.Lifecycle),
		ExtractTo:    s.cfg.Target,
		Operations:   s.cfg.Operations,
		OriginalSize: int64(s.originalSize),
		Size:         int64(len(s.stored)),
		SHA256:       checksumHex,
		PlatformReq:  format.PlatformName(s.cfg.PlatformReq),
	}
}

func purposeName(p uint8) string {
	switch p {
	case format.PurposeData:
		return "data"
	case format.PurposeConfig:
		return "config"
	case format.PurposeMedia:
		return "media"
	default:
		return "code"
	}
}
