package scrape

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// The chains publish two price catalog dialects. The older one nests
// Root > Items > Item with ItemName; the newer one nests
// Prices > Products > Product with ItemNm. Both are tried; whichever yields
// items wins.

type priceRootDialect struct {
	XMLName xml.Name `xml:"Root"`
	Items   struct {
		Item []priceItem `xml:"Item"`
	} `xml:"Items"`
}

type pricePricesDialect struct {
	XMLName  xml.Name `xml:"Prices"`
	Products struct {
		Product []priceItem `xml:"Product"`
	} `xml:"Products"`
}

type priceItem struct {
	ItemCode           string `xml:"ItemCode"`
	ItemName           string `xml:"ItemName"`
	ItemNm             string `xml:"ItemNm"`
	ItemPrice          string `xml:"ItemPrice"`
	UnitOfMeasure      string `xml:"UnitOfMeasure"`
	UnitOfMeasurePrice string `xml:"UnitOfMeasurePrice"`
	ManufacturerName   string `xml:"ManufacturerName"`
	ManufactureCountry string `xml:"ManufactureCountry"`
}

func (it priceItem) name() string {
	if it.ItemName != "" {
		return it.ItemName
	}
	return it.ItemNm
}

// Promotions come in two linkage shapes: the item code directly on the
// promotion element, or a nested PromotionItems list of codes.

type promoDocument struct {
	Promotions []promoEntry `xml:"Promotions>Promotion"`
	// Some chains flatten the list one level.
	Sales []promoEntry `xml:"Sales>Sale"`
}

type promoEntry struct {
	PromotionID          string `xml:"PromotionId"`
	PromotionDescription string `xml:"PromotionDescription"`
	ItemCode             string `xml:"ItemCode"`
	Items                struct {
		Item []struct {
			ItemCode string `xml:"ItemCode"`
		} `xml:"Item"`
	} `xml:"PromotionItems"`
}

// ParsePrices decodes a price catalog XML payload in either dialect.
// A payload with no recognizable root is a parse failure, not "no data".
func ParsePrices(data []byte, branch string) ([]Product, error) {
	data, err := decodePayload(data)
	if err != nil {
		return nil, err
	}
	now := time.Now()

	// The XMLName fields make unmarshal fail on a root element mismatch, so
	// trying both dialects in order is unambiguous.
	var root priceRootDialect
	if err := xml.Unmarshal(data, &root); err == nil {
		return convertPriceItems(root.Items.Item, branch, now), nil
	}

	var prices pricePricesDialect
	if err := xml.Unmarshal(data, &prices); err == nil {
		return convertPriceItems(prices.Products.Product, branch, now), nil
	}

	return nil, fmt.Errorf("unrecognized price catalog structure")
}

func convertPriceItems(items []priceItem, branch string, seenAt time.Time) []Product {
	products := make([]Product, 0, len(items))
	for _, it := range items {
		code := strings.TrimSpace(it.ItemCode)
		name := strings.TrimSpace(it.name())
		if code == "" || name == "" {
			continue
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(it.ItemPrice), 64)
		if err != nil {
			continue
		}
		unitPrice, _ := strconv.ParseFloat(strings.TrimSpace(it.UnitOfMeasurePrice), 64)
		products = append(products, Product{
			ItemCode:      code,
			Name:          name,
			Branch:        branch,
			Price:         price,
			UnitOfMeasure: strings.TrimSpace(it.UnitOfMeasure),
			UnitPrice:     unitPrice,
			Manufacturer:  strings.TrimSpace(it.ManufacturerName),
			Country:       strings.TrimSpace(it.ManufactureCountry),
			SeenAt:        seenAt,
		})
	}
	return products
}

// ParsePromotions decodes a promotion catalog XML payload. Promotions without
// a description or without any linked item code are dropped. An empty but
// well-formed document yields an empty slice.
func ParsePromotions(data []byte, branch string) ([]Promotion, error) {
	data, err := decodePayload(data)
	if err != nil {
		return nil, err
	}

	var doc promoDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse promotion catalog: %w", err)
	}

	entries := doc.Promotions
	if len(entries) == 0 {
		entries = doc.Sales
	}

	now := time.Now()
	promos := make([]Promotion, 0, len(entries))
	for _, e := range entries {
		desc := strings.TrimSpace(e.PromotionDescription)
		if desc == "" {
			continue
		}
		for _, code := range promoItemCodes(e) {
			promos = append(promos, Promotion{
				ItemCode:    code,
				Branch:      branch,
				PromoID:     strings.TrimSpace(e.PromotionID),
				Description: desc,
				SeenAt:      now,
			})
		}
	}
	return promos, nil
}

func promoItemCodes(e promoEntry) []string {
	if code := strings.TrimSpace(e.ItemCode); code != "" {
		return []string{code}
	}
	codes := make([]string, 0, len(e.Items.Item))
	for _, it := range e.Items.Item {
		if code := strings.TrimSpace(it.ItemCode); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// decodePayload converts the payload to UTF-8. The chains ship UTF-8,
// UTF-16 (with BOM) and Windows-1255; the XML declaration is not reliable,
// so the bytes are sniffed directly.
func decodePayload(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, []byte{0xff, 0xfe}) || bytes.HasPrefix(data, []byte{0xfe, 0xff}):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		out, err := dec.Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode UTF-16 payload: %w", err)
		}
		return stripEncodingDecl(out), nil
	case bytes.Contains(data[:min(len(data), 128)], []byte("windows-1255")) ||
		bytes.Contains(data[:min(len(data), 128)], []byte("WINDOWS-1255")):
		out, err := charmap.Windows1255.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode Windows-1255 payload: %w", err)
		}
		return stripEncodingDecl(out), nil
	default:
		return bytes.TrimPrefix(data, []byte{0xef, 0xbb, 0xbf}), nil
	}
}

// stripEncodingDecl drops the XML declaration so encoding/xml does not choke
// on a charset label that no longer matches the re-encoded bytes.
func stripEncodingDecl(data []byte) []byte {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if bytes.HasPrefix(trimmed, []byte("<?xml")) {
		if end := bytes.Index(trimmed, []byte("?>")); end >= 0 {
			return trimmed[end+2:]
		}
	}
	return trimmed
}
