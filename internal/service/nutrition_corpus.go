package service

// nutritionCorpus is the fixed Nutrition 101 corpus, stored as ids doc1..doc5.
var nutritionCorpus = []string{
	`Nutrition is the process by which your body takes in and uses food to maintain health, grow, and repair itself. It involves macronutrients—carbohydrates, proteins, and fats—that provide energy and building blocks, and micronutrients—vitamins and minerals—that support vital functions.
Good nutrition is essential because it influences every system in your body. Without it, you can face problems like fatigue, poor immunity, or chronic diseases.
Globally, nutrition presents a paradox: while about 820 million people suffer from hunger and malnutrition, over 2 billion adults are overweight or obese (WHO, 2021). This reflects not just a lack of food, but poor-quality diets.
For example, in many countries, people consume enough calories but not enough nutrients, leading to “hidden hunger” where vitamin and mineral deficiencies occur despite eating enough.
Balanced nutrition means eating a variety of foods—whole grains, lean proteins, fruits, and vegetables—to meet your body’s needs. Understanding nutrition basics sets the foundation for better health and wellbeing.
`,
	`Macronutrients—carbohydrates, proteins, and fats—are the body’s primary energy sources.
Carbohydrates supply about 4 calories per gram and should make up 45–65% of your daily calories (Dietary Guidelines for Americans, 2020). Complex carbs, such as whole grains, beans, and vegetables, release energy steadily and provide fiber, which aids digestion. For example, an average adult eating 2,000 calories should consume about 225–325 grams of carbs daily.
Proteins also provide 4 calories per gram and are vital for building muscles, enzymes, and tissues. The Recommended Dietary Allowance (RDA) for protein is 0.8 grams per kilogram of body weight. For a 70 kg (154 lbs) person, that equals about 56 grams daily. Athletes may require more—up to 1.2–2.0 grams/kg.
Fats are the most energy-dense macronutrient, offering 9 calories per gram. Healthy fats should comprise 20–35% of daily calories. For a 2,000-calorie diet, this is roughly 44–78 grams of fat daily. Sources include olive oil, nuts, seeds, and fatty fish rich in omega-3s.
Imbalances—like consuming over 60% of calories from unhealthy fats or very low protein intake—can increase risks of heart disease or muscle loss. A balanced approach with quality sources supports long-term health.

`,
	`Micronutrients are vitamins and minerals needed in small amounts but essential for health.
Vitamin A supports vision and immunity, with a recommended daily intake of 900 mcg for men and 700 mcg for women (NIH). It’s found in sweet potatoes, carrots, and leafy greens.
Vitamin C acts as an antioxidant and aids healing. Adults need about 90 mg daily for men and 75 mg for women. One medium orange provides around 70 mg.
Vitamin D regulates calcium and bone health; the RDA is 600 IU (15 mcg) for most adults, increasing to 800 IU after age 70. Sun exposure helps, but fortified dairy and fatty fish are good dietary sources.
Iron is crucial for oxygen transport, with men needing 8 mg/day and women of reproductive age requiring 18 mg/day due to menstruation. Deficiency affects over 1.6 billion people worldwide (WHO), causing anemia and fatigue.
Calcium supports bones; adults need 1,000 mg daily, increasing to 1,200 mg for women over 50. Dairy products and fortified plant milks are excellent sources.
Zinc supports immunity; the RDA is 11 mg for men and 8 mg for women. Deficiency can impair immune function.
Eating a varied diet rich in colorful fruits, vegetables, whole grains, and lean proteins usually meets these needs. In populations with limited access to diverse foods, supplementation programs help prevent micronutrient deficiencies.
`,
	`Water is often overlooked but is essential for nutrition and overall health. It makes up about 60% of the human body and is critical for digestion, nutrient transport, temperature regulation, and joint lubrication.
The average recommendation is about 2.7 liters (91 ounces) per day for women and 3.7 liters (125 ounces) for men, including fluids from food and drinks (National Academies, 2020).
Dehydration can cause fatigue, headaches, poor concentration, and, in severe cases, kidney damage. Even mild dehydration reduces physical and mental performance.
Besides plain water, many fruits and vegetables—like watermelon, cucumbers, and oranges—are excellent hydration sources because they contain up to 90% water. Herbal teas and milk also contribute.
To stay hydrated, carry a water bottle, drink regularly throughout the day, and adjust intake based on activity, weather, and health status. Proper hydration supports every aspect of nutrition by helping your body absorb and use nutrients efficiently.
`,
	`Nutrition plays a powerful role in preventing chronic diseases like heart disease, type 2 diabetes, and certain cancers. These conditions are linked to poor diet and lifestyle habits.
For example, a diet high in saturated fats and sugar increases heart disease risk, while fiber-rich diets lower it. The American Heart Association recommends consuming at least 25–30 grams of fiber daily from fruits, vegetables, and whole grains.
Antioxidants—found in berries, nuts, and dark leafy greens—help protect cells from damage that can lead to cancer and aging.
Research, such as the 2015 Dietary Guidelines for Americans, stresses plant-based diets rich in whole foods for disease prevention. Studies show Mediterranean and DASH diets reduce heart disease risk by up to 30%.
Practical tips include reducing processed foods, limiting added sugars, and eating more colorful vegetables and lean proteins. Nutrition is not just about weight but also about building a body resilient to long-term illnesses.
`,
}
