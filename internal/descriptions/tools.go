package descriptions

// Tool descriptions shown to MCP clients, with examples and workflows

const (
	// Repair Tools
	PDFFixAnnotationsDescription = `Restore page annotations that were truncated or dropped from a PDF's page dictionaries.

**When to use:** Comments, highlights, links or form widgets are missing from some pages of a PDF, typically after the file went through a buggy editor or merger.

**How it works:** When a page's /Annots list lost entries, a complete copy of the list often still lives elsewhere in the file as a standalone array of object references. The tool finds, for each page, the first such array that contains every annotation the page still has plus at least one more, and puts it back on the page. The input file is never modified.

**Examples:**
• Repair a reviewed contract: "Fix annotations in contract-reviewed.pdf and write contract-fixed.pdf"
• Check first, then write: "Dry run on notes.pdf, then fix it if anything is recoverable"
• Paranoid mode: "Fix lecture.pdf with verify=true so the output is re-read by an independent parser"

**Outcomes:**
1. repaired: output written, N annotations recovered
2. nothing_to_fix: output written (unless dry run) but no page needed a repair
3. error: nothing written; the message names the failed phase (parse, page lookup, dictionary validation, annotation-key validation, serialize, input validation)

**Best practices:** Use pdf_analyze_annotations before fixing files you care about. An existing output is refused unless force=true.`

	PDFAnalyzeAnnotationsDescription = `Report which pages of a PDF would get their annotations restored, without writing anything.

**When to use:** Before pdf_fix_annotations, or to audit a document for truncated annotation lists.

**Returns:** Number of pages checked, number of candidate reference arrays, and per page: the object the annotations would be copied from, how many annotations the page has now and how many it would have.

**Examples:**
• Audit: "Analyze annotations of report.pdf"
• Triage: "Which pages of merged.pdf lost comments?"`

	PDFFixDirectoryDescription = `Repair annotation lists of every PDF file in a directory.

**When to use:** A batch of documents went through the same broken tool and all need the same repair.

**Behavior:** Files directly inside the directory are processed in parallel, each independently, so one bad file does not stop the rest. Output is written as <name><suffix>.pdf (suffix defaults to "-fixed") into output_directory, or next to the inputs when no output directory is given. Files that already end in the suffix are skipped.

**Examples:**
• Fix a folder in place: "Fix all PDFs in /scans/reviewed"
• Separate output: "Fix /inbox into /inbox/fixed with suffix -restored"

**Best practices:** Results list every file with its outcome; failures are reported per file together with the error.`

	// Server Information Tools
	PDFServerInfoDescription = `Get server configuration, available tools, PDF files in the default directory, and usage guidance.

**When to use:** At the start of a session, to learn which directory the server works in and which files are available.`
)
