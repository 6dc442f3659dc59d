package indexers

import (
	"fmt"

	"github.com/felipemarinho97/torrent-streams/config"
	"github.com/felipemarinho97/torrent-streams/monitoring"
	"github.com/felipemarinho97/torrent-streams/requester"
)

func NewZamunda(opts Options) (*Indexer, error) {
	meta := zamunda
	return newIndexer(meta, &zamundaParser{label: meta.Label, baseURL: baseURL(meta, opts)}, nil, loginTakeLoginForm, opts)
}

func NewZamundaCH(opts Options) (*Indexer, error) {
	meta := zamundaCH
	return newIndexer(meta, &zamundaParser{label: meta.Label, baseURL: baseURL(meta, opts)}, nil, loginTakeLoginQuery, opts)
}

func NewZamundaSE(opts Options) (*Indexer, error) {
	meta := zamundaSE
	return newIndexer(meta, &zamundaSEParser{label: meta.Label, baseURL: baseURL(meta, opts)}, resolveDetailMagnet, loginTakeLoginForm, opts)
}

func NewArenaBG(opts Options) (*Indexer, error) {
	meta := arenabg
	return newIndexer(meta, &arenabgParser{label: meta.Label, baseURL: baseURL(meta, opts)}, resolveArenabgDownload, loginArenabg, opts)
}

// NewZamundaRip builds the Torznab client; limit caps the results per query.
func NewZamundaRip(limit int, opts Options) (*Indexer, error) {
	meta := zamundaRip(limit)
	return newIndexer(meta, &torznabParser{label: meta.Label}, nil, nil, opts)
}

func baseURL(meta IndexerMeta, opts Options) string {
	if opts.BaseURL != "" {
		return opts.BaseURL
	}
	return meta.URL
}

// NewFromConfig builds the enabled indexers in registration order. Every
// indexer gets its own requester, so sessions never leak between catalogs.
func NewFromConfig(cfg *config.Config, cache requester.DocumentCache, metrics *monitoring.Metrics) ([]*Indexer, error) {
	var out []*Indexer
	for _, source := range cfg.Sources {
		req, err := requester.NewRequester(requester.Options{
			RequestTimeout:  cfg.RequestTimeout,
			PageTimeout:     cfg.PageTimeout,
			LoginTimeout:    cfg.LoginTimeout,
			Cache:           cache,
			CacheExpiration: cfg.DocumentCacheTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create requester for %s: %w", source, err)
		}

		opts := Options{
			Requester:            req,
			Credentials:          cfg.CredentialsFor(source),
			Metrics:              metrics,
			CacheSize:            cfg.TorrentCacheSize,
			FormatterConcurrency: cfg.FormatterConcurrency,
			DetailConcurrency:    cfg.DetailConcurrency,
		}

		var idx *Indexer
		switch source {
		case config.SourceZamunda:
			idx, err = NewZamunda(opts)
		case config.SourceZamundaCH:
			idx, err = NewZamundaCH(opts)
		case config.SourceZamundaSE:
			idx, err = NewZamundaSE(opts)
		case config.SourceArenaBG:
			idx, err = NewArenaBG(opts)
		case config.SourceZamundaRip:
			idx, err = NewZamundaRip(cfg.ZamundaRipLimit, opts)
		default:
			err = fmt.Errorf("unknown source %q", source)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, idx)
	}
	return out, nil
}
