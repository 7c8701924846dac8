package notionsync

import (
	"time"

	"github.com/jomei/notionapi"

	infra "github.com/megauravmahendra-png/expense-intelligence/internal/infra/bigquery"
)

// TransactionToNotionProperties converts a stored transaction to Notion
// properties for the expenses database. Counterparty is the page title; the
// Transaction ID rich text property is what the sync uses for idempotency.
func TransactionToNotionProperties(tx *infra.TransactionRow) notionapi.Properties {
	props := notionapi.Properties{
		"Counterparty": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: tx.Counterparty,
					},
				},
			},
		},
		"Transaction ID": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: tx.TransactionID,
					},
				},
			},
		},
		"Date": notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: func() *notionapi.Date {
					d := notionapi.Date(time.Date(
						tx.TransactionDate.Year,
						tx.TransactionDate.Month,
						tx.TransactionDate.Day,
						tx.TransactionTime.Hour,
						tx.TransactionTime.Minute,
						0, 0, time.UTC,
					))
					return &d
				}(),
			},
		},
		"Amount": notionapi.NumberProperty{
			Number: func() float64 {
				if tx.Amount != nil {
					f, _ := tx.Amount.Float64()
					return f
				}
				return 0
			}(),
		},
		"Direction": notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: tx.Direction,
			},
		},
	}

	if tx.CategoryName.Valid && tx.CategoryName.StringVal != "" {
		props["Category"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: tx.CategoryName.StringVal,
			},
		}
	}

	if tx.SubcategoryName.Valid && tx.SubcategoryName.StringVal != "" {
		props["Subcategory"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: tx.SubcategoryName.StringVal,
			},
		}
	}

	if tx.BankTag.Valid && tx.BankTag.StringVal != "" {
		props["Bank"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: tx.BankTag.StringVal,
					},
				},
			},
		}
	}

	props["Imported At"] = notionapi.DateProperty{
		Date: &notionapi.DateObject{
			Start: (*notionapi.Date)(&tx.CreatedTS),
		},
	}

	return props
}
