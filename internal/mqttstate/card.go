package mqttstate

import (
	"context"
	"time"

	"github.com/llehouerou/mediastore/internal/sdcard"
)

// CardStats is the part of an SD card the reporter reads.
type CardStats interface {
	Usage() (int64, error)
	Space() (sdcard.Space, error)
	FileSize(path string) (int64, error)
}

// ReportCard publishes the card's space figures and the sizes of watch
// every interval until ctx ends. The first report goes out immediately.
func (p *Publisher) ReportCard(ctx context.Context, card CardStats, watch []string, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		p.publishCard(card, watch)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (p *Publisher) publishCard(card CardStats, watch []string) {
	var sp spacePayload
	used, err := card.Usage()
	if err == nil {
		var s sdcard.Space
		s, err = card.Space()
		sp.TotalBytes, sp.FreeBytes = s.Total, s.Free
	}
	sp.UsedBytes = used
	if err != nil {
		sp.Error = err.Error()
		p.logger.Warn().Err(err).Msg("card space unavailable")
	}
	p.send(p.topics.CardSpace(), sp, p.retain)

	if len(watch) == 0 {
		return
	}
	files := make([]fileSizePayload, 0, len(watch))
	for _, path := range watch {
		fp := fileSizePayload{Path: path}
		size, err := card.FileSize(path)
		if err != nil {
			fp.Error = err.Error()
		} else {
			fp.SizeBytes = size
		}
		files = append(files, fp)
	}
	p.send(p.topics.CardFiles(), files, p.retain)
}
