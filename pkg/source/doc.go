/*
Package source implements the concrete modality sources of the simple shapes
dataset. Every variant owns its backing storage, validates it eagerly at
construction and implements ports.Source.

	| identifier | type             | backing files                                            |
	|------------|------------------|----------------------------------------------------------|
	| v          | Images           | {split}/{i}.png                                          |
	| v_latents  | PretrainedVisual | saved_latents/{split}/{presaved_path}, {split}_unpaired  |
	| attr       | Attributes       | {split}_labels.npy, {split}_unpaired.npy                 |
	| raw_text   | RawTexts         | {split}_captions.npy, {split}_caption_choices.json       |
	| t          | Texts            | {split}_{latent_filename}.npy and its _mean/_std files   |

Numeric tables may be stored as .npy files or as SQLite matrix files
(.sqlite, .sqlite3, .db).
*/
package source
