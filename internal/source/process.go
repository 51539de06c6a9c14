package source

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/gcbaptista/promo-search-engine/internal/expiry"
	"github.com/gcbaptista/promo-search-engine/internal/tokenizer"
	"github.com/gcbaptista/promo-search-engine/model"
)

const (
	// LastDayLabel marks a promotion ending within the next day
	LastDayLabel = "วันนี้วันสุดท้าย"
	// DefaultAttachmentLabel is used when an attachment has no title
	DefaultAttachmentLabel = "ดาวน์โหลด"
	// DefaultLinkBase prefixes the record ID to build its public link
	DefaultLinkBase = "https://vrcomseven.com/promotions"

	maxKeywords     = 30
	keywordMinRunes = 2 // keywords must be longer than this
)

// ProcessPromotions converts the upstream JSON array of raw promotions into
// records. Fields missing from a raw promotion become empty values.
func ProcessPromotions(raw []byte, now time.Time, linkBase string) ([]model.PromotionRecord, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("upstream payload is not valid JSON")
	}
	parsed := gjson.ParseBytes(raw)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("upstream payload is not a JSON array")
	}
	if linkBase == "" {
		linkBase = DefaultLinkBase
	}
	linkBase = strings.TrimRight(linkBase, "/")

	records := make([]model.PromotionRecord, 0, len(parsed.Array()))
	parsed.ForEach(func(_, promo gjson.Result) bool {
		records = append(records, processPromotion(promo, now, linkBase))
		return true
	})
	return records, nil
}

func processPromotion(promo gjson.Result, now time.Time, linkBase string) model.PromotionRecord {
	id := int(promo.Get("id").Int())
	title := promo.Get("title").String()
	description := promo.Get("description").String()
	category := promo.Get("category").String()

	return model.PromotionRecord{
		ID:            id,
		Title:         title,
		Link:          linkBase + "/" + strconv.Itoa(id),
		Description:   description,
		Content:       description,
		DurationLabel: DurationLabel(promo.Get("display_to").String(), now),
		StartDate:     firstNonEmpty(promo.Get("start_date").String(), promo.Get("display_from").String()),
		EndDate:       firstNonEmpty(promo.Get("end_date").String(), promo.Get("display_to").String()),
		Category:      category,
		PromotionType: promo.Get("promotion_type.name").String(),
		Attachments:   attachments(promo.Get("attachments")),
		Keywords:      tokenizer.UniqueWords(title+" "+description+" "+category, keywordMinRunes, maxKeywords),
	}
}

// DurationLabel describes the time left until displayTo ("2006-01-02 ..."),
// counting whole days rounded down. Unparseable or empty input yields "".
func DurationLabel(displayTo string, now time.Time) string {
	fields := strings.Fields(displayTo)
	if len(fields) == 0 {
		return ""
	}
	end, err := time.ParseInLocation("2006-01-02", fields[0], now.Location())
	if err != nil {
		return ""
	}

	daysLeft := int(math.Floor(end.Sub(now).Hours() / 24))
	switch {
	case daysLeft > 0:
		return fmt.Sprintf("เหลือเวลาอีก %d วัน", daysLeft)
	case daysLeft == 0:
		return LastDayLabel
	default:
		return expiry.ExpiredLabel
	}
}

func attachments(list gjson.Result) []model.Attachment {
	out := make([]model.Attachment, 0)
	if !list.IsArray() {
		return out
	}
	list.ForEach(func(_, att gjson.Result) bool {
		text := DefaultAttachmentLabel
		if t := att.Get("title"); t.Exists() && t.Type != gjson.Null {
			text = t.String()
		}
		out = append(out, model.Attachment{Text: text, URL: att.Get("uri").String()})
		return true
	})
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
