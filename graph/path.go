package graph

// GatekeeperEdge is the Graph edge serving feature-flag queries.
const GatekeeperEdge = "mobile_sdk_gk"

type pathKind int

const (
	pathOther pathKind = iota
	pathMe
	pathPicture
	pathGatekeepers
)

// Path identifies a Graph API endpoint. Construct one with Me, Picture,
// Gatekeepers or Other; the zero value resolves to the empty path.
type Path struct {
	kind pathKind
	id   string
}

// Me addresses the profile of the credential's owner.
func Me() Path {
	return Path{kind: pathMe}
}

// Picture addresses the picture edge of the given node.
func Picture(id string) Path {
	return Path{kind: pathPicture, id: id}
}

// Gatekeepers addresses the feature-flag edge for the given application.
func Gatekeepers(appID string) Path {
	return Path{kind: pathGatekeepers, id: appID}
}

// Other addresses a literal Graph path.
func Other(literal string) Path {
	return Path{kind: pathOther, id: literal}
}

// String resolves the path to its Graph endpoint string.
func (p Path) String() string {
	switch p.kind {
	case pathMe:
		return "me"
	case pathPicture:
		return p.id + "/picture"
	case pathGatekeepers:
		return p.id + "/" + GatekeeperEdge
	default:
		return p.id
	}
}
