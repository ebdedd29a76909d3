package mcpserver

// ReferenceFormatContract describes the Markdown reference list format the
// link validator understands.
const ReferenceFormatContract = `# Professor Reference Format

Reference slides are Markdown documents grouped into sections, one link per line.

## Structure

` + "```" + `markdown
### Official Documentation
- [Python Tutorial](https://docs.python.org/3/tutorial/) - The official tutorial

### Videos
- [Intro to Python](https://www.youtube.com/watch?v=abc) - 20 minute overview
` + "```" + `

## Rules

1. **Links** use inline syntax: ` + "`" + `[label](https://host/path)` + "`" + `. Only http and https
   URLs are checked; other schemes are left untouched.
2. **One link per line.** A line holding a dead link, or naming a dead URL in
   plain text, is removed as a whole, so keep descriptions on the same line as
   their link.
3. **Headers** (lines starting with ` + "`" + `#` + "`" + `) group links. A header whose links were all
   removed, including those under its subheaders, is dropped too. Headers with no links underneath are kept.
4. **Reachability**: a link counts as valid when a HEAD (or GET, for servers that
   reject HEAD) returns a status below 400 after redirects. Timeouts on trusted
   documentation hosts are treated as reachable.
5. **Thresholds**: a list with fewer than 3 valid links, or fewer than half of its
   links valid, should be regenerated rather than shown.

## Tools

- ` + "`" + `validate_references` + "`" + ` checks every link and returns the filtered Markdown with counts.
- ` + "`" + `check_url` + "`" + ` probes a single URL.
- ` + "`" + `extract_links` + "`" + ` lists the URLs the validator would check, in document order.
`
