package services

import (
	"context"
	"time"

	"github.com/bellapacxx/bingo-engine/game"
	"github.com/bellapacxx/bingo-engine/realtime"
	"github.com/bellapacxx/bingo-engine/utils/logger"
)

// Announced is what players hear and see for one ball.
type Announced struct {
	game.Announcement
	Display string `json:"display"`
	Time    int64  `json:"time"`
}

// Announcer publishes announcements one ball at a time, spaced by interval.
type Announcer struct {
	ch       realtime.Channel
	path     string
	interval time.Duration
	queue    chan game.Announcement
}

func NewAnnouncer(ch realtime.Channel, interval time.Duration) *Announcer {
	return &Announcer{
		ch:       ch,
		path:     realtime.PathAnnouncements,
		interval: interval,
		queue:    make(chan game.Announcement, game.MaxNumber),
	}
}

// Enqueue never blocks. A full queue means a whole game is backed up, the ball is dropped.
func (a *Announcer) Enqueue(an game.Announcement) {
	select {
	case a.queue <- an:
	default:
		logger.Warnf("[Announcer] queue full, dropping %s%d", an.Letter, an.Number)
	}
}

// Run delivers queued announcements until ctx is done.
func (a *Announcer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case an := <-a.queue:
			a.publish(ctx, an)
			if a.interval <= 0 {
				continue
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(a.interval):
			}
		}
	}
}

func (a *Announcer) publish(ctx context.Context, an game.Announcement) {
	display, _ := game.Format(an.Number)
	msg := Announced{Announcement: an, Display: display, Time: time.Now().UnixMilli()}
	if err := a.ch.Set(ctx, a.path, msg); err != nil {
		logger.Errorf("[Announcer] publish %s: %v", display, err)
		return
	}
	logger.Debugf("[Announcer] %s", display)
}
