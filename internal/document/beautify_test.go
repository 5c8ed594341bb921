package document

import "testing"

func TestBeautifyIndentsBlocks(t *testing.T) {
	src := "<html><head><title>Hi</title></head><body><main><section><p>One <em>two</em></p></section></main></body></html>"
	want := "<html>\n" +
		"  <head>\n" +
		"    <title>Hi</title>\n" +
		"  </head>\n" +
		"  <body>\n" +
		"    <main>\n" +
		"      <section>\n" +
		"        <p>One <em>two</em></p>\n" +
		"      </section>\n" +
		"    </main>\n" +
		"  </body>\n" +
		"</html>\n"
	if got := Beautify(src); got != want {
		t.Fatalf("unexpected output:\n%s", got)
	}
}

func TestBeautifyKeepsVerbatimContent(t *testing.T) {
	src := "<div>\n<pre>  a\n    b</pre>\n<script>if (a < b) {\n  go()\n}</script>\n</div>"
	want := "<div>\n" +
		"  <pre>  a\n    b</pre>\n" +
		"  <script>if (a < b) {\n  go()\n}</script>\n" +
		"</div>\n"
	if got := Beautify(src); got != want {
		t.Fatalf("unexpected output:\n%q", got)
	}
}

func TestBeautifyKeepsAttributesAndEntities(t *testing.T) {
	src := `<p class="a  b" data-x='1'>Tom &amp; Jerry</p>`
	if got := Beautify(src); got != src+"\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestStripBlankLines(t *testing.T) {
	got := StripBlankLines("a\n\n  \n\tb\n")
	if got != "a\n\tb\n" {
		t.Fatalf("unexpected output %q", got)
	}
	if StripBlankLines("\n \n") != "" {
		t.Fatalf("expected empty output")
	}
}
