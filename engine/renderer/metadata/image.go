package metadata

/**
 * @brief Decoded pixel data handed from the asset layer to a texture upload.
 * Pixels holds tightly packed rows, bottom row first when FlipY was
 * requested. Float formats are little endian float32 values.
 */
type Image struct {
	Width       uint32
	Height      uint32
	PixelFormat PixelFormat
	Pixels      []byte
}

/** @brief Parameters used when loading an image. */
type ImageParams struct {
	/** @brief Indicates if the image should be flipped on the y-axis when loaded. */
	FlipY bool
}
