package profile

func intPtr(n int) *int { return &n }

// Defaults returns the built-in profiles seeded into an empty store.
func Defaults() []Profile {
	return []Profile{
		{
			ID:           "tw_einvoice_v1",
			Name:         "台灣電子發票證明聯",
			Description:  "統一發票證明聯（電子發票）常見欄位",
			DocumentType: "invoice",
			Tags:         []string{"台灣", "發票", "電子發票"},
			Fields: []Field{
				{
					FieldName:      "invoice_number",
					DisplayName:    "發票號碼",
					DataType:       "string",
					Required:       true,
					Pattern:        `[A-Z]{2}-\d{8}`,
					ExpectedLength: intPtr(10),
					Description:    "格式: AB-12345678",
				},
				{FieldName: "invoice_date", DisplayName: "發票日期", DataType: "date", Required: true, Description: "開立日期"},
				{
					FieldName:      "seller_tax_id",
					DisplayName:    "賣方統編",
					DataType:       "string",
					Pattern:        `\d{8}`,
					ExpectedLength: intPtr(8),
					Description:    "銷售方統一編號（8碼）",
				},
				{
					FieldName:      "buyer_tax_id",
					DisplayName:    "買方統編",
					DataType:       "string",
					Pattern:        `\d{8}`,
					ExpectedLength: intPtr(8),
					Description:    "買受人統一編號（8碼）",
				},
				{FieldName: "total_amount", DisplayName: "總金額", DataType: "number", Required: true, Description: "含稅總額"},
				{
					FieldName:      "random_code",
					DisplayName:    "隨機碼",
					DataType:       "string",
					Pattern:        `\d{4}`,
					ExpectedLength: intPtr(4),
					Description:    "4位隨機碼",
				},
				{FieldName: "qrcode_left", DisplayName: "QR Code (左)", DataType: "string", Description: "左側 QR Code"},
				{FieldName: "qrcode_right", DisplayName: "QR Code (右)", DataType: "string", Description: "右側 QR Code"},
			},
		},
		{
			ID:           "general_receipt_v1",
			Name:         "一般收據",
			Description:  "一般商業收據常見欄位",
			DocumentType: "receipt",
			Tags:         []string{"收據", "通用"},
			Fields: []Field{
				{FieldName: "receipt_number", DisplayName: "收據編號", DataType: "string", Required: true},
				{FieldName: "receipt_date", DisplayName: "收據日期", DataType: "date", Required: true},
				{FieldName: "payer_name", DisplayName: "付款人", DataType: "string"},
				{FieldName: "total_amount", DisplayName: "總金額", DataType: "number", Required: true},
				{FieldName: "payment_method", DisplayName: "付款方式", DataType: "string"},
				{FieldName: "description", DisplayName: "項目說明", DataType: "string"},
			},
		},
	}
}
