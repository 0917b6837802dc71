package render

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/ZaguanLabs/linguaswap"
	"github.com/ZaguanLabs/linguaswap/scheduler"
)

// DocumentAttributesUnitID is the update unit that sets <html lang dir>.
const DocumentAttributesUnitID = "document-attributes"

// DocumentAttributesUnit returns an update unit that sets the lang and dir
// attributes of the root element for the target language. It runs before
// the renderer.
func DocumentAttributesUnit(doc *Document) scheduler.Registration {
	return scheduler.Registration{
		Priority: 10,
		Update: func(ctx context.Context, ev linguaswap.SwitchEvent) error {
			return SetDocumentLanguage(doc, ev.To)
		},
	}
}

// SetDocumentLanguage sets the lang and dir attributes on the <html> element.
func SetDocumentLanguage(doc *Document, lang string) error {
	var err error
	doc.Write(func(d *goquery.Document) {
		root := d.Find("html")
		if root.Length() == 0 {
			err = fmt.Errorf("document has no <html> element")
			return
		}
		root.SetAttr("lang", linguaswap.ToHTMLLang(lang))
		root.SetAttr("dir", linguaswap.GetDirection(lang))
	})
	return err
}
