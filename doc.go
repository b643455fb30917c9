/*
Package shapes loads the Simple Shapes dataset: synthetic images of
shapes with their attributes and captions, stored per split under one
directory.

Each domain (images, pretrained image latents, attributes, raw captions,
caption embeddings) is read by its own source. A composite sampler joins
them by index, and the alignment partitioner splits the joined records
into groups of domains that are observed together.

# Usage

	ds, err := shapes.Open("/data/shapes", "train", []string{"v", "attr"})
	if err != nil {
		log.Fatal(err)
	}
	rec, err := ds.Get(0) // rec["v"] is a domain.Image, rec["attr"] a domain.Attribute

	res, err := ds.Align(ctx, alignment.Proportions{
		domain.NewGroupKey("v", "attr"): 0.1,
		domain.NewGroupKey("v"):         1,
		domain.NewGroupKey("attr"):      1,
	}, alignment.WithSeed(0))

Domain identifiers are v, v_latents, attr, raw_text and t. Custom domains
are added with registry.Register and passed through WithRegistry.

# Layout

	{split}/{i}.png                    images
	{split}_labels.npy                 attribute table
	{split}_unpaired.npy               per-example unpaired columns
	saved_latents/{split}/{file}       pretrained image latents
	{split}_captions.npy               captions
	{split}_caption_choices.json       caption generation metadata
	{split}_{name}.npy                 caption embeddings
	{name}_mean.npy, {name}_std.npy    embedding normalization
*/
package shapes
