package tables

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/docunify/docunify/contentcache"
	"github.com/docunify/docunify/docconfig"
	"github.com/docunify/docunify/docerr"
	"github.com/docunify/docunify/progress"
)

// search runs strategy A (if a LayoutModel is wired) and then a bounded
// strategy-B parameter sweep, caching each (crop, params) result by
// content hash, and returns the best-scoring candidate found (spec
// §4.7.1, §4.7.3 "bounded parameter search ... cache per crop-hash",
// §4.7.4 arbitration picks the candidate with the highest combined
// score). prog reports sweep progress; a nil prog is a no-op.
func search(ctx context.Context, cache contentcache.Store, model LayoutModel, in Input, cfg docconfig.TableConfig, prog progress.Indicator) (*Candidate, error) {
	cropHash := in.CropHash()
	var best *Candidate

	if model != nil {
		if c, ok, err := model.Detect(ctx, in); err == nil && ok && c != nil {
			scoreCandidate(c, in, 1.0)
			best = c
		}
	}

	defaultCandidate, alignment := detectHeuristicB(in, heuristicParams{LineScale: 25, Flavor: "lattice", ShiftText: false})
	scoreCandidate(defaultCandidate, in, alignment)
	if best == nil || defaultCandidate.Combined > best.Combined {
		best = defaultCandidate
	}

	acceptThreshold := cfg.AcceptThreshold
	if acceptThreshold <= 0 {
		acceptThreshold = 0.75
	}
	if best.Combined >= acceptThreshold {
		return best, nil
	}

	maxCandidates := cfg.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = 8
	}
	earlyExit := cfg.EarlyExitThreshold
	if earlyExit <= 0 {
		earlyExit = 0.9
	}

	if prog != nil {
		prog.SetStatus(fmt.Sprintf("table %s: sweeping parameters", cropHash))
		prog.SetTotal(maxCandidates)
	}

	evaluated := 0
	for _, params := range lineScaleSweep() {
		if evaluated >= maxCandidates {
			break
		}
		select {
		case <-ctx.Done():
			return nil, docerr.Wrap(docerr.Cancelled, ctx.Err(), "tables: parameter search cancelled")
		default:
		}
		evaluated++
		if prog != nil {
			prog.SetCurrent(evaluated)
		}

		key := fmt.Sprintf("table:%s:%d:%s:%v", cropHash, params.LineScale, params.Flavor, params.ShiftText)
		candidate := loadCached(ctx, cache, key)
		if candidate == nil {
			var alignment float64
			candidate, alignment = detectHeuristicB(in, params)
			scoreCandidate(candidate, in, alignment)
			if encoded, err := json.Marshal(candidate); err == nil {
				_ = cache.Put(ctx, key, encoded)
			}
		}

		if best == nil || candidate.Combined > best.Combined {
			best = candidate
		}
		if best.Combined >= earlyExit {
			break
		}
	}

	return best, nil
}

func loadCached(ctx context.Context, cache contentcache.Store, key string) *Candidate {
	raw, ok, err := cache.Get(ctx, key)
	if err != nil || !ok {
		return nil
	}
	var c Candidate
	if json.Unmarshal(raw, &c) != nil {
		return nil
	}
	return &c
}
