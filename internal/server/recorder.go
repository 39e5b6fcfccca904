// Package server runs the Slack events webhook that records task-switch
// entries to Google Sheets and Docs.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/switchlog/switchlog/internal/audit"
	"github.com/switchlog/switchlog/internal/config"
	"github.com/switchlog/switchlog/internal/entry"
	"github.com/switchlog/switchlog/internal/sheets"
	"github.com/switchlog/switchlog/internal/slack"
	"github.com/switchlog/switchlog/internal/store"
)

// SheetHeader is the header row written to freshly provisioned spreadsheets.
var SheetHeader = []string{"Date", "Timestamp", "Task", "Category"}

// usageHint is posted back to the channel for malformed lines when
// reply_on_invalid is enabled. The offending line itself is never echoed.
const usageHint = "Couldn't parse that. Use:\n• ts: task (category)\n• tdo: task (category)"

// googleAPI is the surface of sheets.Client the recorder uses.
type googleAPI interface {
	AppendRow(ctx context.Context, spreadsheetID string, row []string) error
	CreateSpreadsheet(ctx context.Context, title string, header []string) (string, error)
	CreateDocument(ctx context.Context, title string) (string, error)
	PrependText(ctx context.Context, docID, text string) error
	FindFolder(ctx context.Context, name string) (string, error)
	CreateFolder(ctx context.Context, name string) (string, error)
	MoveFile(ctx context.Context, fileID, folderID string) error
	ShareWithEmail(ctx context.Context, fileID, email string) error
}

// messagePoster is the surface of slack.Client the recorder uses.
type messagePoster interface {
	PostMessage(ctx context.Context, channelID, text string) error
}

// Recorder applies parsed log entries: per-channel sheet provisioning,
// sheet appends, and the weekly todo doc.
type Recorder struct {
	root     string
	cfg      *config.Config
	db       *store.DB
	google   googleAPI
	slack    messagePoster
	registry *RegistryHolder
	log      *slog.Logger
	now      func() time.Time
}

// NewRecorder wires a Recorder.
func NewRecorder(root string, cfg *config.Config, db *store.DB, google googleAPI, poster messagePoster, registry *RegistryHolder, log *slog.Logger) *Recorder {
	return &Recorder{
		root:     root,
		cfg:      cfg,
		db:       db,
		google:   google,
		slack:    poster,
		registry: registry,
		log:      log,
		now:      time.Now,
	}
}

// HandleMessage processes one inbound channel message. Lines that do not
// parse are dropped (optionally answered with a usage hint); the raw line is
// never logged.
func (r *Recorder) HandleMessage(ctx context.Context, ev *slack.MessageEvent) error {
	if !ev.FromUser() {
		return nil
	}

	e, err := entry.Parse(ev.Text)
	if err != nil {
		r.log.Info("ignoring message with invalid format", "channel", ev.Channel)
		if r.cfg.ReplyOnInvalid {
			if err := r.slack.PostMessage(ctx, ev.Channel, usageHint); err != nil {
				r.log.Warn("posting usage hint failed", "channel", ev.Channel, "err", err)
			}
		}
		return nil
	}

	switch e.Kind {
	case entry.KindTodo:
		err = r.recordTodo(ctx, ev.Channel, e)
	default:
		err = r.recordSwitch(ctx, ev.Channel, e)
	}
	if err != nil {
		return err
	}

	if _, err := r.db.AddEntry(ev.Channel, e, r.now()); err != nil {
		r.log.Warn("journaling entry failed", "channel", ev.Channel, "err", err)
	}

	r.log.Info("logged entry", "channel", ev.Channel, "kind", string(e.Kind), "category", e.Category)
	return nil
}

// recordSwitch appends a ts entry as a spreadsheet row.
func (r *Recorder) recordSwitch(ctx context.Context, channelID string, e entry.Entry) error {
	sheetID, err := r.ensureSheet(ctx, channelID)
	if err != nil {
		return err
	}

	now := r.now()
	row := []string{
		now.Format("2006-01-02"),
		now.Format("2006-01-02 15:04:05"),
		e.Description,
		e.Category,
	}
	if err := r.google.AppendRow(ctx, sheetID, row); err != nil {
		return fmt.Errorf("appending to sheet for channel %s: %w", channelID, err)
	}
	return nil
}

// ensureSheet returns the channel's spreadsheet, provisioning one on first
// contact: create it, move it into the configured folder, and share it with
// the configured email.
func (r *Recorder) ensureSheet(ctx context.Context, channelID string) (string, error) {
	sheetID, err := r.db.SheetForChannel(channelID)
	if err == nil {
		return sheetID, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	title := fmt.Sprintf("%s - %s", r.cfg.SheetPrefix, r.channelName(channelID))
	sheetID, err = r.google.CreateSpreadsheet(ctx, title, SheetHeader)
	if err != nil {
		return "", fmt.Errorf("creating sheet for channel %s: %w", channelID, err)
	}

	if folderID, err := r.ensureFolder(ctx); err != nil {
		r.log.Warn("folder provisioning failed", "err", err)
	} else if folderID != "" {
		if err := r.google.MoveFile(ctx, sheetID, folderID); err != nil {
			r.log.Warn("moving sheet into folder failed", "sheet", sheetID, "err", err)
		}
	}

	if r.cfg.ShareEmail != "" {
		if err := r.google.ShareWithEmail(ctx, sheetID, r.cfg.ShareEmail); err != nil {
			r.log.Warn("sharing sheet failed", "sheet", sheetID, "err", err)
		}
	}

	if err := r.db.SetSheetForChannel(channelID, sheetID); err != nil {
		return "", err
	}

	r.log.Info("provisioned sheet", "channel", channelID, "sheet", sheetID)
	return sheetID, nil
}

// ensureFolder resolves the configured Drive folder, creating it on first
// use and caching its ID in the workspace config. Returns empty string when
// no folder is configured.
func (r *Recorder) ensureFolder(ctx context.Context) (string, error) {
	if r.cfg.FolderID != "" {
		return r.cfg.FolderID, nil
	}
	if r.cfg.FolderName == "" {
		return "", nil
	}

	folderID, err := r.google.FindFolder(ctx, r.cfg.FolderName)
	if err != nil {
		return "", err
	}
	if folderID == "" {
		folderID, err = r.google.CreateFolder(ctx, r.cfg.FolderName)
		if err != nil {
			return "", err
		}
		if r.cfg.ShareEmail != "" {
			if err := r.google.ShareWithEmail(ctx, folderID, r.cfg.ShareEmail); err != nil {
				r.log.Warn("sharing folder failed", "folder", folderID, "err", err)
			}
		}
	}

	r.cfg.FolderID = folderID
	if err := r.cfg.Save(r.root); err != nil {
		r.log.Warn("persisting folder ID failed", "err", err)
	}
	return folderID, nil
}

// recordTodo prepends a tdo entry to the weekly todo doc, creating the doc
// on week rollover and inserting a day header once per day.
func (r *Recorder) recordTodo(ctx context.Context, channelID string, e entry.Entry) error {
	now := r.now()
	weekStart := audit.WeekStart(now).Format("2006-01-02")
	today := now.Format("2006-01-02")

	doc, err := r.db.TodoDocForWeek(weekStart)
	if errors.Is(err, store.ErrNotFound) {
		title := fmt.Sprintf("Todo Log - Week of %s", audit.WeekStart(now).Format("01.02.2006"))
		docID, createErr := r.google.CreateDocument(ctx, title)
		if createErr != nil {
			return fmt.Errorf("creating todo doc: %w", createErr)
		}
		if r.cfg.ShareEmail != "" {
			if shareErr := r.google.ShareWithEmail(ctx, docID, r.cfg.ShareEmail); shareErr != nil {
				r.log.Warn("sharing todo doc failed", "doc", docID, "err", shareErr)
			}
		}
		doc = &store.TodoDoc{WeekStart: weekStart, DocID: docID}
		r.log.Info("provisioned todo doc", "week", weekStart, "doc", docID)
	} else if err != nil {
		return err
	}

	if !doc.HasDay(today) {
		header := fmt.Sprintf("\n\n%s\n", now.Format("Monday, 01.02.2006"))
		if err := r.google.PrependText(ctx, doc.DocID, header); err != nil {
			return fmt.Errorf("writing day header: %w", err)
		}
		doc.DaysWritten = append(doc.DaysWritten, today)
	}

	line := fmt.Sprintf("%s - %s (%s)\n", now.Format("15:04"), e.Description, e.Category)
	if err := r.google.PrependText(ctx, doc.DocID, line); err != nil {
		return fmt.Errorf("appending to todo doc: %w", err)
	}

	return r.db.SaveTodoDoc(doc)
}

// channelName resolves a channel ID to its registry name, falling back to
// the raw ID for unregistered channels.
func (r *Recorder) channelName(channelID string) string {
	if r.registry != nil {
		if ch := r.registry.ByID(channelID); ch != nil {
			return ch.Name
		}
	}
	return channelID
}

var _ googleAPI = (*sheets.Client)(nil)
