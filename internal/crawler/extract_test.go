package crawler

import "testing"

func mustPage(t *testing.T, u, body string) *page {
	t.Helper()
	p, err := parsePage(u, body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return p
}

func TestFindEmail_TextFallback(t *testing.T) {
	p := mustPage(t, "https://a.example.com", `<body>
		<a href="mailto:broken">bad</a>
		<div>logo@2x.png</div><div>Write to Info@Example.org today</div>
		<script>var x = "hidden@example.com";</script>
	</body>`)
	if got := p.findEmail(); got != "info@example.org" {
		t.Fatalf("got %q, want %q", got, "info@example.org")
	}
}

func TestFindMobile_PrefersMobileTel(t *testing.T) {
	p := mustPage(t, "https://a.example.com", `<body>
		<a href="tel:+442071234567">Office</a>
		<a href="tel:+447400123456">Mobile</a>
	</body>`)
	if got := p.findMobile("GB"); got != "+447400123456" {
		t.Fatalf("got %q, want the mobile number", got)
	}

	p = mustPage(t, "https://a.example.com", `<body><a href="tel:020 7123 4567">Office</a></body>`)
	if got := p.findMobile("GB"); got != "+442071234567" {
		t.Fatalf("got %q, want fallback office number", got)
	}
}

func TestFindWhatsApp_Hrefs(t *testing.T) {
	cases := []struct {
		href, want string
	}{
		{"https://api.whatsapp.com/send?phone=447400123456&text=hi", "+447400123456"},
		{"https://web.whatsapp.com/send?phone=+447400123456", "+447400123456"},
		{"https://wa.me/447400123456/", "+447400123456"},
		{"https://example.com/whatsapp/+44 7400 123456", "+447400123456"},
	}
	for _, c := range cases {
		p := mustPage(t, "https://a.example.com", `<body><a href="`+c.href+`">wa</a></body>`)
		if got := p.findWhatsApp("GB"); got != c.want {
			t.Errorf("%s: got %q, want %q", c.href, got, c.want)
		}
	}
}

func TestLinks(t *testing.T) {
	p := mustPage(t, "https://a.example.com/start", `<body>
		<a href="/Contact-Us/?ref=nav">c</a>
		<a href="products/list/">p</a>
		<a href="?page=support">s</a>
		<a href="/file.PDF">f</a>
		<a href="javascript:void(0)">j</a>
		<a href="https://b.example.com/contact">other</a>
		<a href="ftp://a.example.com/x">ftp</a>
	</body>`)
	got := p.links()
	want := []link{
		{"https://a.example.com/Contact-Us", true},
		{"https://a.example.com/products/list", false},
		{"https://a.example.com/start", true},
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("link %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}
