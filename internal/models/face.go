package models

// BoundingBox is a normalized face rectangle: fractional left/top/width/height
// relative to the image dimensions.
type BoundingBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// FaceDetail is one face detected in a still image. Confidence is a percent
// score; nil means the detector reported no confidence and the face is
// dropped by the locator.
type FaceDetail struct {
	Box        BoundingBox `json:"box"`
	Confidence *float64    `json:"confidence,omitempty"`
}

// VideoFace is one face detected at a timestamp inside a video.
// Brightness and Sharpness are percent quality scores; a face missing either
// is dropped, never defaulted to pass.
type VideoFace struct {
	Box         BoundingBox `json:"box"`
	TimestampMS int64       `json:"timestamp_ms"`
	Brightness  *float64    `json:"brightness,omitempty"`
	Sharpness   *float64    `json:"sharpness,omitempty"`
}
