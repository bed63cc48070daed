package transcript

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/opendesk/ticketd/pkg/infra/chatplatform"
	"github.com/sirupsen/logrus"
)

// DefaultCompressAbove is the rendered size beyond which the transcript is
// gzip'd before attachment.
const DefaultCompressAbove = 512 * 1024

// Renderer turns a channel's message history into a self-contained HTML
// document with a footer summarizing message count and origin.
type Renderer struct {
	logger        *logrus.Logger
	compressAbove int
}

func NewRenderer(logger *logrus.Logger, compressAbove int) *Renderer {
	if compressAbove <= 0 {
		compressAbove = DefaultCompressAbove
	}
	return &Renderer{
		logger:        logger,
		compressAbove: compressAbove,
	}
}

func (r *Renderer) Render(channelName, guildName string, messages []chatplatform.Message) *chatplatform.Attachment {
	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>Transcript - %s</title>\n", html.EscapeString(channelName))
	b.WriteString("<style>body{background-color:#36393e;color:#dcddde;font-family:sans-serif;margin:0;padding:16px}" +
		".msg{padding:6px 0;border-bottom:1px solid #40444b}" +
		".author{color:#fff;font-weight:bold;margin-right:8px}" +
		".time{color:#72767d;font-size:12px;margin-left:8px}" +
		".footer{text-align:center;width:100%;background-color:#36393e;color:white;padding:10px}</style>\n")
	b.WriteString("</head>\n<body>\n")
	fmt.Fprintf(&b, "<h2>#%s</h2>\n", html.EscapeString(channelName))

	for _, msg := range messages {
		b.WriteString("<div class=\"msg\">")
		fmt.Fprintf(&b, "<span class=\"author\">%s</span>", html.EscapeString(msg.AuthorName))
		if !msg.SentAt.IsZero() {
			fmt.Fprintf(&b, "<span class=\"time\">%s</span>", msg.SentAt.Format(time.RFC1123))
		}
		fmt.Fprintf(&b, "<div>%s</div>", html.EscapeString(msg.Content))
		b.WriteString("</div>\n")
	}

	fmt.Fprintf(&b, "<div class=\"footer\">Exported %d message(s) from the server: %s</div>\n",
		len(messages), html.EscapeString(guildName))
	b.WriteString("</body>\n</html>\n")

	data := []byte(b.String())
	name := fmt.Sprintf("transcript-%s.html", channelName)
	contentType := "text/html"

	if len(data) > r.compressAbove {
		compressed, err := compress(data)
		if err != nil {
			r.logger.WithError(err).Warn("transcript compression failed, attaching uncompressed")
		} else {
			data = compressed
			name += ".gz"
			contentType = "application/gzip"
		}
	}

	return &chatplatform.Attachment{
		Name:        name,
		ContentType: contentType,
		Data:        data,
	}
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
