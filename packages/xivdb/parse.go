package xivdb

import (
	"fmt"

	"github.com/NotRanged/ranged-lodestone-recipe-db-scraper/packages/domain"
	"github.com/tidwall/gjson"
)

type listPage struct {
	urls       []string
	totalPages int64
}

// parseListPage pulls the detail URLs and the reported page count out of
// one listing response. A body that does not carry the expected shape is
// treated the same as a network failure: the fetch is retried.
func parseListPage(body []byte) (listPage, error) {
	root := gjson.ParseBytes(body)
	results := root.Get("items.results")
	total := root.Get("items.paging.total")
	if !results.IsArray() || !total.Exists() {
		return listPage{}, fmt.Errorf("listing page missing items.results or items.paging.total")
	}

	page := listPage{totalPages: total.Int()}
	var badEntry bool
	results.ForEach(func(_, entry gjson.Result) bool {
		u := entry.Get("url_api")
		if !u.Exists() {
			badEntry = true
			return false
		}
		page.urls = append(page.urls, u.String())
		return true
	})
	if badEntry {
		return listPage{}, fmt.Errorf("listing entry missing url_api")
	}
	return page, nil
}

// parseItemPair normalizes one item payload into its nq and hq records.
// Both share name and ilvl; the hq record takes the _hq stat fields. A
// stat field appears only when the payload's attribute list carries the
// matching id.
func parseItemPair(body []byte) ([2]domain.Record, error) {
	var zero [2]domain.Record
	root := gjson.ParseBytes(body)
	if !root.Get("name_en").Exists() || !root.Get("level_item").Exists() {
		return zero, fmt.Errorf("item payload missing name_en or level_item")
	}

	ilvl := int(root.Get("level_item").Int())
	nq := domain.Record{Name: itemNames(root), HQ: false, ILvl: ilvl}
	hq := domain.Record{Name: itemNames(root), HQ: true, ILvl: ilvl}

	root.Get("attributes_params").ForEach(func(_, attr gjson.Result) bool {
		value := intp(attr.Get("value"))
		percent := intp(attr.Get("percent"))
		valueHQ := intp(attr.Get("value_hq"))
		percentHQ := intp(attr.Get("percent_hq"))

		switch attr.Get("id").Int() {
		case domain.AttrCraftsmanship:
			nq.CraftsmanshipValue, nq.CraftsmanshipPercent = value, percent
			hq.CraftsmanshipValue, hq.CraftsmanshipPercent = valueHQ, percentHQ
		case domain.AttrControl:
			nq.ControlValue, nq.ControlPercent = value, percent
			hq.ControlValue, hq.ControlPercent = valueHQ, percentHQ
		case domain.AttrCP:
			nq.CPValue, nq.CPPercent = value, percent
			hq.CPValue, hq.CPPercent = valueHQ, percentHQ
		}
		return true
	})

	return [2]domain.Record{nq, hq}, nil
}

func itemNames(root gjson.Result) map[string]string {
	return map[string]string{
		"en": root.Get("name_en").String(),
		"fr": root.Get("name_fr").String(),
		"de": root.Get("name_de").String(),
		"ja": root.Get("name_ja").String(),
	}
}

func intp(r gjson.Result) *int {
	v := int(r.Int())
	return &v
}
