package render

import "bytes"

func fillTemplate(svg []byte, fill, stroke string) []byte {
	out := bytes.ReplaceAll(svg, []byte("{{fill}}"), []byte(fill))
	return bytes.ReplaceAll(out, []byte("{{stroke}}"), []byte(stroke))
}

// oksvg는 "fill: #..." 처럼 공백이 섞인 style 값을 못 읽는다
func sanitizeSVG(svg []byte) []byte {
	fixed := bytes.ReplaceAll(svg, []byte("fill: #"), []byte("fill:#"))
	fixed = bytes.ReplaceAll(fixed, []byte("stroke: #"), []byte("stroke:#"))
	fixed = bytes.ReplaceAll(fixed, []byte("stop-color: #"), []byte("stop-color:#"))
	return fixed
}
