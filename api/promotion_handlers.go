package api

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	log "github.com/sirupsen/logrus"

	internalErrors "github.com/gcbaptista/promo-search-engine/internal/errors"
	"github.com/gcbaptista/promo-search-engine/model"
)

// LatestPromotionsHandler lists the newest promotions. Query: n (optional)
func (api *API) LatestPromotionsHandler(c *gin.Context) {
	n := 0
	if raw := c.Query("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			result := &ValidationResult{Valid: true}
			result.AddError("n", "n must be a non-negative integer")
			SendValidationError(c, result)
			return
		}
		n = parsed
	}
	if n > MaxPageLimit {
		n = MaxPageLimit
	}

	records := api.searcher.GetLatest(n)
	c.JSON(http.StatusOK, gin.H{
		"data":  records,
		"total": len(records),
	})
}

// GetPromotionHandler returns one promotion as JSON
func (api *API) GetPromotionHandler(c *gin.Context) {
	id, result := ValidatePromotionID(c.Param("id"))
	if result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	record, err := api.searcher.GetByID(id)
	if err != nil {
		if errors.Is(err, internalErrors.ErrPromotionNotFound) {
			SendPromotionNotFoundError(c, id)
			return
		}
		SendInternalError(c, "promotion lookup", err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// ViewPromotionHandler renders the public HTML detail page of a promotion
func (api *API) ViewPromotionHandler(c *gin.Context) {
	id, result := ValidatePromotionID(c.Param("id"))
	if result.HasErrors() {
		renderNotFound(c)
		return
	}

	record, err := api.searcher.GetByID(id)
	if err != nil {
		renderNotFound(c)
		return
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := viewTemplate.Execute(c.Writer, newViewData(record)); err != nil {
		log.WithError(err).WithField("promotion_id", id).Error("failed to render promotion page")
	}
}

func renderNotFound(c *gin.Context) {
	c.Data(http.StatusNotFound, "text/html; charset=utf-8", []byte(notFoundPage))
}

type viewAttachment struct {
	Text string
	URL  string
}

type viewData struct {
	Title       string
	Content     template.HTML
	Attachments []viewAttachment
}

// contentPolicy keeps the formatting of upstream promotion content and drops
// scripts, event handlers and non-http links.
var contentPolicy = newContentPolicy()

func newContentPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowURLSchemes("http", "https", "mailto")
	policy.RequireParseableURLs(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	return policy
}

func newViewData(record model.PromotionRecord) viewData {
	data := viewData{
		Title:   record.Title,
		Content: template.HTML(contentPolicy.Sanitize(record.DisplayContent())),
	}
	if strings.TrimSpace(data.Title) == "" {
		data.Title = "โปรโมชั่น"
	}
	for _, att := range record.Attachments {
		if att.URL == "" {
			continue
		}
		text := strings.TrimSpace(strings.TrimRight(att.Text, ">"))
		if text == "" {
			text = "ไฟล์"
		}
		data.Attachments = append(data.Attachments, viewAttachment{Text: text, URL: att.URL})
	}
	return data
}

const notFoundPage = `<!DOCTYPE html><html lang="th"><head><meta charset="UTF-8"><title>ไม่พบโปรโมชั่น</title></head><body><h1>ไม่พบโปรโมชั่น</h1></body></html>`

var viewTemplate = template.Must(template.New("view").Parse(`<!DOCTYPE html>
<html lang="th">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, sans-serif; padding: 20px; max-width: 800px; margin: 0 auto; background: #f5f5f5; }
        .card { background: white; border-radius: 12px; padding: 20px; box-shadow: 0 2px 8px rgba(0,0,0,0.1); }
        h1 { color: #27ACB2; font-size: 1.4em; }
        h3 { color: #333; margin-top: 20px; }
        .content { white-space: pre-wrap; line-height: 1.6; color: #444; }
        li { margin: 8px 0; }
        a { color: #27ACB2; text-decoration: none; }
    </style>
</head>
<body>
    <div class="card">
        <h1>{{.Title}}</h1>
        <div class="content">{{.Content}}</div>
        {{- if .Attachments}}
        <h3>ไฟล์แนบ</h3>
        <ul>
        {{- range .Attachments}}
            <li><a href="{{.URL}}" target="_blank" rel="noopener">{{.Text}}</a></li>
        {{- end}}
        </ul>
        {{- end}}
    </div>
</body>
</html>
`))
