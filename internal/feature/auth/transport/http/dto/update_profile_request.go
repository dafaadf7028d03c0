package dto

// UpdateProfileReq は/update-profileのリクエストボディです。
// ProfilePicはbase64のdata URIまたはhttp(s)のURLです。
type UpdateProfileReq struct {
	ProfilePic string `json:"profilePic"`
}
