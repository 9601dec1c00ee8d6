package estimate

// ReferenceFaceWidthCm is the assumed physical width of an adult face,
// used by the pinhole distance model.
const ReferenceFaceWidthCm = 14.0

// DistanceCm estimates the camera-to-face distance in centimeters from
// the apparent face width in pixels: distance = realWidth * focal /
// pixelWidth. Non-positive inputs yield 0, meaning "unknown".
func DistanceCm(faceWidthPx, focalPx, referenceWidthCm float64) float64 {
	if faceWidthPx <= 0 || focalPx <= 0 || referenceWidthCm <= 0 {
		return 0
	}
	return referenceWidthCm * focalPx / faceWidthPx
}
