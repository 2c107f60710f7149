package page

import (
	"bytes"
	"context"
	"net/url"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"tweetwatch/lib/telemetry"
)

var tracer = otel.Tracer("page")

type StaticViewOptions struct {
	Url string
	// if unspecified, defaults to 900
	ViewportHeight float64
}

// StaticView is a snapshot of a fetched document with a simulated scroll
// position. Clicks are not dispatchable, so click-driven states report not
// found and the retrieval run continues on the content already rendered.
type StaticView struct {
	doc            *goquery.Document
	viewportHeight float64
	scrollTop      float64
	contentHeight  float64
}

// NewStaticView fetches the target url once and wraps the parsed document.
func NewStaticView(ctx context.Context, opts StaticViewOptions) (*StaticView, error) {
	ctx, span := tracer.Start(ctx, "NewStaticView")
	defer span.End()

	target, err := url.Parse(opts.Url)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(target.Hostname()))
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "page/http")

	res, err := client.R().
		SetContext(ctx).
		Get(opts.Url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch page")
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse document")
		return nil, err
	}

	return NewStaticViewFromDocument(doc, opts.ViewportHeight), nil
}

// NewStaticViewFromDocument wraps an already-parsed document. The content
// height is approximated from the node count so scroll stall detection
// terminates.
func NewStaticViewFromDocument(doc *goquery.Document, viewportHeight float64) *StaticView {
	if viewportHeight == 0 {
		viewportHeight = 900
	}
	nodes := doc.Find("*").Length()
	return &StaticView{
		doc:            doc,
		viewportHeight: viewportHeight,
		contentHeight:  float64(nodes) * 4,
	}
}

func (v *StaticView) Find(selector string) *goquery.Selection {
	return v.doc.Find(selector)
}

func (v *StaticView) ViewportHeight() float64 { return v.viewportHeight }

func (v *StaticView) ScrollTop() float64 { return v.scrollTop }

func (v *StaticView) ScrollBy(px float64) {
	v.scrollTop += px
	if v.scrollTop < 0 {
		v.scrollTop = 0
	}
	max := v.contentHeight - v.viewportHeight
	if max < 0 {
		max = 0
	}
	if v.scrollTop > max {
		v.scrollTop = max
	}
}

func (v *StaticView) Click(sel *goquery.Selection) bool {
	// a fetched snapshot has no event loop to dispatch into
	return false
}
