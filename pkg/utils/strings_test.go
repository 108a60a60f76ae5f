package utils

import (
	"testing"
)

func TestRemoveAccents(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"hello", "hello"},
		{"cobrança", "cobranca"},
		{"café", "cafe"},
		{"São Paulo", "Sao Paulo"},
		{"naïve", "naive"},
	}

	for _, test := range tests {
		result := RemoveAccents(test.input)
		if result != test.expected {
			t.Errorf("RemoveAccents(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}
}

func TestGoName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"id", "ID"},
		{"name", "Name"},
		{"has_more", "HasMore"},
		{"url", "URL"},
		{"checkout.session", "CheckoutSession"},
		{"starting_after", "StartingAfter"},
		{"billing_details", "BillingDetails"},
		{"terminal.configuration", "TerminalConfiguration"},
		{"PostWidgetsWidget", "PostWidgetsWidget"},
	}

	for _, test := range tests {
		result := GoName(test.input)
		if result != test.expected {
			t.Errorf("GoName(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}
}

func TestPascalPath(t *testing.T) {
	got := PascalPath("createSubscriptionSchedule", "phases", "[*]", "items", "[*]", "price_data", "recurring")
	want := "CreateSubscriptionSchedulePhasesItemsPriceDataRecurring"
	if got != want {
		t.Errorf("PascalPath = %q, expected %q", got, want)
	}
	if got := PascalPath("widget", "status"); got != "WidgetStatus" {
		t.Errorf("PascalPath(widget, status) = %q", got)
	}
}

func TestEnumVariantName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"active", "Active"},
		{"archived", "Archived"},
		{"card_present", "CardPresent"},
		{"en-GB", "EnMinusGb"},
		{"zh-Hant-HK", "ZhMinusHantMinusHk"},
		{"", "Empty"},
		{"3d_secure", "V3dSecure"},
		{"v1.0", "V1Dot0"},
		{"multi word", "MultiWord"},
		{"a+b", "APlusB"},
		{"ACTIVE", "Active"},
	}

	for _, test := range tests {
		result := EnumVariantName(test.input)
		if result != test.expected {
			t.Errorf("EnumVariantName(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}
}

func TestUniqueNames(t *testing.T) {
	got := UniqueNames([]string{"Active", "Active", "Active2", "Archived", "Active"})
	want := []string{"Active", "Active3", "Active2", "Archived", "Active4"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("UniqueNames = %v, expected %v", got, want)
		}
	}
}

func TestPackageName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"checkout", "checkout"},
		{"TerminalConfiguration", "terminalconfiguration"},
		{"payment_link", "paymentlink"},
		{"type", "typepkg"},
		{"3ds", "x3ds"},
		{"", "misc"},
	}

	for _, test := range tests {
		result := PackageName(test.input)
		if result != test.expected {
			t.Errorf("PackageName(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}
}

func TestSingular(t *testing.T) {
	tests := map[string]string{
		"widgets":      "widget",
		"invoices":     "invoice",
		"accounts":     "account",
		"tax_rates":    "tax_rate",
		"subscription": "subscription",
		"status":       "status",
		"address":      "address",
		"line_items":   "line_item",
	}
	for in, want := range tests {
		if got := Singular(in); got != want {
			t.Errorf("Singular(%q) = %q, expected %q", in, got, want)
		}
	}
}
