// Package cvtext 从上传的简历文件中抽取纯文本，供匹配打分使用。
package cvtext

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/net/html"
)

// ErrUnsupported 文件格式无法抽取文本（如 PDF、旧版 .doc）。
var ErrUnsupported = errors.New("unsupported cv format")

const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "header": true, "footer": true,
}

// Extract 按内容嗅探的类型抽取文本：纯文本原样返回，HTML 去标签，DOCX 读取正文段落。
func Extract(data []byte) (string, error) {
	mt := mimetype.Detect(data)
	switch {
	case mt.Is(docxMIME):
		return FromDOCX(data)
	case mt.Is("text/html"):
		return FromHTML(string(data))
	case mt.Is("text/plain"):
		return normalize(string(data)), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupported, mt.String())
}

// FromHTML 去掉标签、脚本与样式，块级元素之间换行。
func FromHTML(htmlText string) (string, error) {
	node, err := html.Parse(strings.NewReader(htmlText))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style" || n.Data == "head") {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockTags[n.Data] {
			b.WriteByte('\n')
		}
	}
	walk(node)
	return normalize(b.String()), nil
}

// FromDOCX 读取 word/document.xml 中的 w:t 文本，每个 w:p 一行。
func FromDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open document.xml: %w", err)
		}
		defer rc.Close()
		return readDocumentXML(rc)
	}
	return "", fmt.Errorf("%w: docx without word/document.xml", ErrUnsupported)
}

func readDocumentXML(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var (
		b      strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte(' ')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return normalize(b.String()), nil
}

// normalize 合并行内空白并去掉空行。
func normalize(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
