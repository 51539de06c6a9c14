package linebot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	log "github.com/sirupsen/logrus"

	"github.com/gcbaptista/promo-search-engine/config"
	"github.com/gcbaptista/promo-search-engine/model"
	"github.com/gcbaptista/promo-search-engine/services"
)

// Replier sends reply messages. *messaging_api.MessagingApiAPI implements it.
type Replier interface {
	ReplyMessage(req *messaging_api.ReplyMessageRequest) (*messaging_api.ReplyMessageResponse, error)
}

// NewReplier creates a Messaging API client for the channel access token
func NewReplier(channelAccessToken string) (*messaging_api.MessagingApiAPI, error) {
	return messaging_api.NewMessagingApiAPI(channelAccessToken)
}

// Handler serves the LINE webhook
type Handler struct {
	channelSecret string
	searcher      services.PromotionSearcher
	replier       Replier
	builder       Builder
	latestCount   int
}

// NewHandler creates a webhook handler.
func NewHandler(cfg config.LINEConfig, viewBaseURL string, searcher services.PromotionSearcher, replier Replier) (*Handler, error) {
	if cfg.ChannelSecret == "" {
		return nil, fmt.Errorf("LINE channel secret cannot be empty")
	}
	if searcher == nil {
		return nil, fmt.Errorf("searcher cannot be nil")
	}
	if replier == nil {
		return nil, fmt.Errorf("replier cannot be nil")
	}
	return &Handler{
		channelSecret: cfg.ChannelSecret,
		searcher:      searcher,
		replier:       replier,
		builder:       Builder{ViewBaseURL: viewBaseURL},
		latestCount:   cfg.MaxItems,
	}, nil
}

// ServeHTTP verifies the signature and replies to every text message event.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cb, err := webhook.ParseRequest(h.channelSecret, r)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			log.Warn("rejected LINE callback with invalid signature")
			http.Error(w, "invalid signature", http.StatusBadRequest)
			return
		}
		log.WithError(err).Warn("failed to parse LINE callback")
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	h.HandleEvents(r.Context(), cb.Events)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// HandleEvents replies to text messages sent by users; other events are ignored.
func (h *Handler) HandleEvents(ctx context.Context, events []webhook.EventInterface) {
	for _, event := range events {
		e, ok := event.(webhook.MessageEvent)
		if !ok {
			continue
		}
		text, ok := e.Message.(webhook.TextMessageContent)
		if !ok {
			continue
		}
		userID := sourceUserID(e.Source)
		if userID == "" {
			continue
		}

		messages := h.Respond(ctx, userID, text.Text)
		_, err := h.replier.ReplyMessage(&messaging_api.ReplyMessageRequest{
			ReplyToken: e.ReplyToken,
			Messages:   messages,
		})
		if err != nil {
			log.WithError(err).WithField("user_id", userID).Error("failed to send LINE reply")
		}
	}
}

// Respond computes the reply for one message from userID.
func (h *Handler) Respond(ctx context.Context, userID, text string) []messaging_api.MessageInterface {
	text = strings.TrimSpace(text)
	page, err := h.searcher.Search(ctx, userID, text)
	if err == nil && text == LatestKeyword && (page.Outcome == model.OutcomeNoResults || page.Outcome == model.OutcomeEmptyQuery) {
		return h.builder.LatestReply(h.searcher.GetLatest(h.latestCount))
	}
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Debug("search ended without results")
	}
	return h.builder.SearchReply(text, page, err)
}

func sourceUserID(src webhook.SourceInterface) string {
	switch s := src.(type) {
	case webhook.UserSource:
		return s.UserId
	case webhook.GroupSource:
		return s.UserId
	case webhook.RoomSource:
		return s.UserId
	}
	return ""
}
