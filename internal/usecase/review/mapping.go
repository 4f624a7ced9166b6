package review

import (
	"context"
	"encoding/json"
	"errors"

	domainreview "github.com/ajschmidt2/bluebeam-consolidator/internal/domain/review"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/errs"
)

// lastMappingKey stores the most recent resolved column mapping so the next
// import of a similar export can be previewed against it.
const lastMappingKey = "import.last_mapping"

type MappingPreview struct {
	Columns  []string
	Mapping  domainreview.Mapping
	Unmapped []domainreview.Field
}

// PreviewMapping infers a column mapping from an upload without importing
// anything.
func (s *Service) PreviewMapping(ctx context.Context, raw []byte, aliases domainreview.AliasTable) (MappingPreview, error) {
	if ctx == nil {
		return MappingPreview{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return MappingPreview{}, errs.Wrap(err, "check context")
	}

	rows, err := domainreview.ReadRows(raw)
	if err != nil {
		return MappingPreview{}, errs.Wrap(err, "decode upload")
	}

	if aliases == nil {
		aliases = domainreview.DefaultAliases()
	}
	mapping := domainreview.InferMapping(rows[0].Columns, aliases)

	return MappingPreview{
		Columns:  rows[0].Columns,
		Mapping:  mapping,
		Unmapped: mapping.Unmapped(),
	}, nil
}

// LastMapping returns the mapping persisted by the most recent import, if
// any.
func (s *Service) LastMapping(ctx context.Context) (domainreview.Mapping, bool, error) {
	if ctx == nil {
		return domainreview.Mapping{}, false, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return domainreview.Mapping{}, false, errs.Wrap(err, "check context")
	}

	value, ok, err := s.repo.GetSetting(ctx, lastMappingKey)
	if err != nil {
		return domainreview.Mapping{}, false, errs.Wrap(err, "load last mapping")
	}
	if !ok {
		return domainreview.Mapping{}, false, nil
	}

	var mapping domainreview.Mapping
	if err := json.Unmarshal([]byte(value), &mapping); err != nil {
		return domainreview.Mapping{}, false, errs.Wrap(err, "decode last mapping")
	}
	return mapping, true, nil
}

func (s *Service) saveLastMapping(ctx context.Context, mapping domainreview.Mapping) error {
	raw, err := json.Marshal(mapping)
	if err != nil {
		return errs.Wrap(err, "encode mapping")
	}
	if err := s.repo.SetSetting(ctx, lastMappingKey, string(raw)); err != nil {
		return errs.Wrap(err, "save mapping setting")
	}
	return nil
}
