package parse

// noiseWords are dropped when deriving a software name: installer markers,
// crack/release-group tags, architectures, packaging formats, and common
// Korean annotations. Lowercase lookup.
var noiseWords = map[string]struct{}{
	"setup": {}, "installer": {}, "install": {}, "portable": {}, "full": {},
	"final": {}, "with": {},
	"crack": {}, "keygen": {}, "patch": {}, "serial": {}, "key": {}, "keys": {},
	"cracked": {}, "activation": {}, "activator": {}, "activated": {},
	"registered": {}, "licensed": {},
	"x64": {}, "x86": {}, "ia64": {}, "x32": {}, "win": {}, "mac": {},
	"linux": {}, "bits": {}, "bit": {},
	"multilingual": {}, "retail": {}, "oem": {}, "vlsc": {}, "vol": {},
	"trial": {},
	"repack": {}, "repacked": {}, "incl": {}, "pre": {}, "extras": {},
	"addon": {}, "addons": {}, "custom": {}, "embedded": {}, "delta": {},
	"winpe": {},
	"build": {}, "sp1": {}, "sp2": {}, "sp3": {}, "r1": {}, "r2": {},
	"dvd": {}, "cd": {}, "iso": {}, "img": {}, "exe": {}, "msi": {},
	"zip": {}, "rar": {}, "7z": {}, "cab": {},
	"sadeempc": {}, "downloadly": {}, "tryroom": {}, "koreacrack": {},
	"kpojiuk": {}, "xetrin": {}, "yaschir": {}, "ssq": {}, "sse": {},
	"rg": {}, "tbe": {}, "fosi": {}, "xforce": {}, "team": {},
	"한국어판": {}, "설치법": {}, "인증방법": {}, "스크린샷": {}, "포터블": {}, "휴대용": {},
	"readme": {}, "instructions": {}, "screenshot": {}, "preview": {},
	"info": {},
}

// editionWords survive noise filtering because they distinguish products
// (Pro vs Home, Suite vs Studio). Lowercase lookup.
var editionWords = map[string]struct{}{
	"pro": {}, "plus": {}, "premium": {}, "ultimate": {}, "enterprise": {},
	"professional": {}, "home": {}, "business": {}, "student": {},
	"standard": {}, "deluxe": {}, "complete": {}, "technician": {},
	"server": {}, "advanced": {}, "workstation": {}, "edition": {},
	"master": {}, "suite": {}, "studio": {}, "creative": {}, "cloud": {},
}

// knownVendors is checked in order; the first substring hit in the lowered
// software name wins.
var knownVendors = []string{
	"adobe", "microsoft", "autodesk", "jetbrains", "google",
	"apple", "oracle", "vmware", "docker", "slack", "zoom",
	"spotify", "discord", "steam", "epic", "nvidia", "amd", "intel",
	"ds", "dassault", "solidworks", "corel", "ashampoo", "wondershare",
	"cyberlink", "nero", "pixologic", "maxon", "foundry", "siemens",
}
