// Package linebot adapts the search engine to the LINE Messaging API: it
// verifies webhook calls, runs each text message through Engine.Search and
// renders the outcome as a reply.
package linebot

import (
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/microcosm-cc/bluemonday"

	internalErrors "github.com/gcbaptista/promo-search-engine/internal/errors"
	"github.com/gcbaptista/promo-search-engine/model"
	"github.com/gcbaptista/promo-search-engine/services"
)

const (
	// LatestKeyword asks for the newest promotions when it matches nothing
	LatestKeyword = "ล่าสุด"

	maxTitleRunes    = 40
	maxPreviewRunes  = 200
	maxFileNameRunes = 15
	// LINE limits: 12 bubbles per carousel, 20 characters per button label,
	// 400 characters of alt text
	maxBubbles      = 12
	maxLabelRunes   = 20
	maxAltTextRunes = 400

	colorAccent  = "#27ACB2"
	colorSubtext = "#666666"

	msgEmptyQuery    = "พิมพ์ชื่อสินค้าหรือโปรโมชั่นที่ต้องการค้นหา เช่น \"iphone\" หรือพิมพ์ '" + LatestKeyword + "' เพื่อดูโปรใหม่ๆ"
	msgNoSession     = "ยังไม่มีการค้นหาก่อนหน้า กรุณาพิมพ์คำค้นหาก่อนเปลี่ยนหน้า"
	msgNoLatest      = "ยังไม่มีโปรโมชั่นในระบบครับ"
	msgServiceError  = "ขออภัย ระบบขัดข้องชั่วคราว กรุณาลองใหม่อีกครั้ง"
	msgNoDetails     = "ไม่มีรายละเอียด"
	msgTapForDetails = "👆 แตะเพื่อดูรายละเอียดเพิ่มเติม"
)

// plainText strips markup from upstream content for card previews
var plainText = bluemonday.StrictPolicy()

// Builder renders search outcomes as LINE messages. It has no side effects.
type Builder struct {
	ViewBaseURL string // links point to ViewBaseURL + "/view/{id}"
}

// SearchReply renders the result of Engine.Search.
func (b Builder) SearchReply(rawQuery string, page services.SearchPage, err error) []messaging_api.MessageInterface {
	var rangeErr *internalErrors.PageOutOfRangeError
	switch {
	case errors.Is(err, internalErrors.ErrNoActiveSession):
		return textReply(msgNoSession)
	case errors.As(err, &rangeErr):
		return textReply(pageOutOfRangeText(rangeErr))
	case err != nil:
		return textReply(msgServiceError)
	}

	switch page.Outcome {
	case model.OutcomeEmptyQuery:
		return textReply(msgEmptyQuery)
	case model.OutcomeNoResults:
		return textReply(noResultsText(rawQuery))
	}

	var summary string
	if page.Fuzzy {
		summary = fmt.Sprintf("ไม่พบคำว่า '%s' ตรงตัว แสดงผลที่ใกล้เคียง %d รายการ", page.Query, page.Total)
	} else {
		summary = fmt.Sprintf("พบ %d โปรโมชั่นสำหรับ '%s'", page.Total, page.Query)
	}
	summary += fmt.Sprintf(" (หน้า %d/%d)", page.Page, page.TotalPages)

	carousel := b.carousel(summary, page.Results)
	if page.Page < page.TotalPages {
		next := "หน้า " + strconv.Itoa(page.Page+1)
		carousel.QuickReply = &messaging_api.QuickReply{
			Items: []messaging_api.QuickReplyItem{
				{Action: &messaging_api.MessageAction{Label: "หน้าถัดไป", Text: next}},
			},
		}
	}
	return []messaging_api.MessageInterface{&messaging_api.TextMessage{Text: summary}, carousel}
}

// LatestReply lists the newest promotions.
func (b Builder) LatestReply(records []model.PromotionRecord) []messaging_api.MessageInterface {
	if len(records) == 0 {
		return textReply(msgNoLatest)
	}

	hits := make([]model.ScoredRecord, len(records))
	for i, rec := range records {
		hits[i] = model.ScoredRecord{PromotionRecord: rec}
	}
	summary := fmt.Sprintf("โปรโมชั่นล่าสุด %d รายการ", len(records))
	return []messaging_api.MessageInterface{&messaging_api.TextMessage{Text: summary}, b.carousel(summary, hits)}
}

// carousel renders one bubble per hit. Tapping the body opens the view page
// and each attachment gets its own button.
func (b Builder) carousel(altText string, hits []model.ScoredRecord) *messaging_api.FlexMessage {
	if len(hits) > maxBubbles {
		hits = hits[:maxBubbles]
	}
	bubbles := make([]messaging_api.FlexBubble, 0, len(hits))
	for _, hit := range hits {
		bubbles = append(bubbles, b.bubble(hit.PromotionRecord))
	}
	return &messaging_api.FlexMessage{
		AltText:  truncateRunes(altText, maxAltTextRunes),
		Contents: &messaging_api.FlexCarousel{Contents: bubbles},
	}
}

func (b Builder) bubble(rec model.PromotionRecord) messaging_api.FlexBubble {
	body := []messaging_api.FlexComponentInterface{
		&messaging_api.FlexText{Text: ContentPreview(rec), Size: "sm", Wrap: true, Color: colorSubtext},
	}
	if rec.DurationLabel != "" {
		body = append(body, &messaging_api.FlexText{
			Text: rec.DurationLabel, Size: "xs", Color: colorAccent, Weight: messaging_api.FlexTextWEIGHT_BOLD, Margin: "md",
		})
	}
	body = append(body, &messaging_api.FlexText{Text: msgTapForDetails, Size: "xs", Color: colorAccent, Margin: "md"})

	title := &messaging_api.FlexText{
		Text: ShortTitle(rec.Title), Weight: messaging_api.FlexTextWEIGHT_BOLD, Size: "md", Wrap: true, MaxLines: 2,
	}
	header := []messaging_api.FlexComponentInterface{title}

	bubble := messaging_api.FlexBubble{
		Size:   messaging_api.FlexBubbleSIZE_MEGA,
		Header: &messaging_api.FlexBox{Layout: messaging_api.FlexBoxLAYOUT_VERTICAL, BackgroundColor: colorAccent, Contents: header},
		Body:   &messaging_api.FlexBox{Layout: messaging_api.FlexBoxLAYOUT_VERTICAL, Contents: body, Action: &messaging_api.UriAction{Uri: b.ViewURL(rec.ID)}},
	}
	if buttons := attachmentButtons(rec.Attachments); len(buttons) > 0 {
		bubble.Footer = &messaging_api.FlexBox{
			Layout:   messaging_api.FlexBoxLAYOUT_VERTICAL,
			Spacing:  "sm",
			Contents: buttons,
		}
	}
	return bubble
}

func attachmentButtons(attachments []model.Attachment) []messaging_api.FlexComponentInterface {
	var buttons []messaging_api.FlexComponentInterface
	for i, att := range attachments {
		if att.URL == "" || strings.HasSuffix(att.URL, "#") {
			continue
		}
		buttons = append(buttons, &messaging_api.FlexButton{
			Style:  messaging_api.FlexButtonSTYLE_SECONDARY,
			Action: &messaging_api.UriAction{Label: AttachmentLabel(att, i+1), Uri: att.URL},
		})
	}
	return buttons
}

// AttachmentLabel names an attachment button: its text without the trailing
// ">", else the file name from its URL, else "ไฟล์ N".
func AttachmentLabel(att model.Attachment, n int) string {
	label := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(att.Text), ">"))
	if label == "" {
		name := att.URL[strings.LastIndex(att.URL, "/")+1:]
		if dot := strings.Index(name, "."); dot >= 0 {
			name = name[:dot]
		}
		label = string([]rune(name)[:min(len([]rune(name)), maxFileNameRunes)])
	}
	if label == "" {
		return "ไฟล์ " + strconv.Itoa(n)
	}
	return truncateRunes(label, maxLabelRunes)
}

// ContentPreview returns the record's content as plain text, capped for a card.
func ContentPreview(rec model.PromotionRecord) string {
	text := html.UnescapeString(plainText.Sanitize(rec.DisplayContent()))
	text = strings.TrimSpace(text)
	if text == "" {
		return msgNoDetails
	}
	return truncateRunes(text, maxPreviewRunes)
}

// ViewURL returns the public detail page of a promotion
func (b Builder) ViewURL(id int) string {
	return strings.TrimRight(b.ViewBaseURL, "/") + "/view/" + strconv.Itoa(id)
}

// ShortTitle keeps the last line of a multi-line title and caps its length.
func ShortTitle(title string) string {
	if i := strings.LastIndex(title, "\n"); i >= 0 {
		title = title[i+1:]
	}
	title = strings.TrimSpace(title)
	if len([]rune(title)) > maxTitleRunes {
		return string([]rune(title)[:maxTitleRunes-3]) + "..."
	}
	return title
}

func noResultsText(rawQuery string) string {
	return fmt.Sprintf("ไม่พบโปรโมชั่นที่เกี่ยวกับ '%s' ครับ\nลองคำอื่น หรือพิมพ์ '%s' เพื่อดูโปรใหม่ๆ", strings.TrimSpace(rawQuery), LatestKeyword)
}

func pageOutOfRangeText(err *internalErrors.PageOutOfRangeError) string {
	if err.TotalPages == 0 {
		return "การค้นหาล่าสุดไม่มีผลลัพธ์ กรุณาพิมพ์คำค้นหาใหม่"
	}
	return fmt.Sprintf("ไม่มีหน้า %d ครับ ผลการค้นหามีทั้งหมด %d หน้า", err.Page, err.TotalPages)
}

func textReply(text string) []messaging_api.MessageInterface {
	return []messaging_api.MessageInterface{&messaging_api.TextMessage{Text: text}}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
