// Package provider detects which file-hosting service a URL belongs to.
//
// Detection is driven by an ordered table of hostname substring rules
// evaluated top to bottom; the first matching rule wins. URLs matching no
// rule are classified by shape (HLS manifest, DASH manifest) and finally
// fall through to Direct.
package provider

import (
	"net/url"
	"path"
	"strings"
)

// Tag identifies a hosting service or, failing that, the protocol-level
// shape of the source.
type Tag string

// Known hosting services, plus the protocol fallthrough tags.
const (
	GoFile      Tag = "GoFile"
	GoogleDrive Tag = "Google Drive"
	Mega        Tag = "MEGA"
	PixelDrain  Tag = "PixelDrain"
	MediaFire   Tag = "MediaFire"
	MegaUp      Tag = "MegaUp"
	OneFichier  Tag = "1Fichier"
	KrakenFiles Tag = "KrakenFiles"
	SendCM      Tag = "Send.cm"
	StreamTape  Tag = "StreamTape"
	DoodStream  Tag = "DoodStream"
	FileMoon    Tag = "FileMoon"
	StreamWish  Tag = "StreamWish"
	Mp4Upload   Tag = "Mp4Upload"
	MixDrop     Tag = "MixDrop"
	Vidoza      Tag = "Vidoza"
	Voe         Tag = "Voe"
	Upstream    Tag = "Upstream"
	FileLions   Tag = "FileLions"
	VTube       Tag = "VTube"
	HexUpload   Tag = "HexUpload"
	Racaty      Tag = "Racaty"
	UsersDrive  Tag = "UsersDrive"
	Buzzheavier Tag = "Buzzheavier"

	Torrent Tag = "Torrent"
	HLS     Tag = "HLS"
	DASH    Tag = "DASH"
	Direct  Tag = "Direct"
)

// Rule associates a set of hostname substrings with a hosting service.
// NeedsResolve marks services that hide their file URLs behind captive
// pages and must go through the external resolve endpoint.
type Rule struct {
	Tag          Tag
	Hosts        []string
	NeedsResolve bool
}

// rules is the ordered detection table. Order matters: evaluation is top to
// bottom and the first matching rule wins.
var rules = []Rule{
	{GoFile, []string{"gofile.io"}, true},
	{GoogleDrive, []string{"drive.google.com", "docs.google.com", "drive.usercontent.google.com"}, true},
	{Mega, []string{"mega.nz", "mega.co.nz", "mega.io"}, true},
	{PixelDrain, []string{"pixeldrain.com", "pixeldrain.net"}, true},
	{MediaFire, []string{"mediafire.com"}, true},
	{MegaUp, []string{"megaup.net"}, true},
	{OneFichier, []string{"1fichier.com"}, true},
	{KrakenFiles, []string{"krakenfiles.com"}, true},
	{SendCM, []string{"send.cm"}, true},
	{StreamTape, []string{"streamtape", "strtape", "streamta.pe", "stape.fun", "shavetape"}, true},
	{DoodStream, []string{"doodstream", "dood.", "doods.", "ds2play", "d0o0d", "do0od", "d000d", "vidply"}, true},
	{FileMoon, []string{"filemoon"}, true},
	{StreamWish, []string{"streamwish", "strwish", "wishfast", "awish", "dwish", "mwish"}, true},
	{Mp4Upload, []string{"mp4upload"}, true},
	{MixDrop, []string{"mixdrop", "mixdrp"}, true},
	{Vidoza, []string{"vidoza"}, true},
	{Voe, []string{"voe.sx", "voe-un"}, true},
	{Upstream, []string{"upstream.to"}, true},
	{FileLions, []string{"filelions", "alions.pro", "dlions.pro"}, true},
	{VTube, []string{"vtube.to", "vtbe."}, true},
	{HexUpload, []string{"hexupload", "hexload"}, true},
	{Racaty, []string{"racaty"}, true},
	{UsersDrive, []string{"usersdrive"}, true},
	{Buzzheavier, []string{"buzzheavier"}, true},
}

// Rules returns a copy of the ordered detection table, primarily for
// display and testing.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Detect classifies a URL into exactly one Tag.
// Malformed URLs are treated as having no hostname and fall through to the
// shape-based check on the raw string.
func Detect(rawURL string) Tag {
	if rule, ok := match(rawURL); ok {
		return rule.Tag
	}

	switch {
	case hasPathExt(rawURL, ".m3u8"):
		return HLS
	case hasPathExt(rawURL, ".mpd"):
		return DASH
	default:
		return Direct
	}
}

// NeedsResolve reports whether the URL's host hides its file URLs behind a
// captive page and must go through the external resolve endpoint.
func NeedsResolve(rawURL string) bool {
	rule, ok := match(rawURL)
	return ok && rule.NeedsResolve
}

// match finds the first rule whose hostname substrings match the URL's
// lower-cased hostname.
func match(rawURL string) (Rule, bool) {
	host := hostname(rawURL)
	if host == "" {
		return Rule{}, false
	}

	for _, rule := range rules {
		for _, fragment := range rule.Hosts {
			if strings.Contains(host, fragment) {
				return rule, true
			}
		}
	}
	return Rule{}, false
}

func hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// hasPathExt checks the URL path's extension, ignoring query and fragment.
func hasPathExt(rawURL, ext string) bool {
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		return strings.EqualFold(path.Ext(u.Path), ext)
	}

	trimmed := rawURL
	for _, sep := range []string{"?", "#"} {
		if i := strings.Index(trimmed, sep); i >= 0 {
			trimmed = trimmed[:i]
		}
	}
	return strings.HasSuffix(strings.ToLower(trimmed), ext)
}
